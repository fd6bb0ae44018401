package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/soundprediction/plagiarismguard"
)

// Build information, settable at build time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// HealthHandler serves liveness/readiness probes. checker may be nil in
// tests that only exercise routing.
type HealthHandler struct {
	checker *plagiarismguard.Checker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(checker *plagiarismguard.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HealthCheck handles GET /health - basic liveness check.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "plagiarismguard",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe.
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"service":   "plagiarismguard",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready - confirms the orchestrator (and
// therefore its corpus store and LSH index) was constructed.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"error":  "checker not initialized",
		})
		return
	}

	stats := h.checker.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ready",
		"corpus_size": stats.Count,
		"go_version":  runtime.Version(),
	})
}

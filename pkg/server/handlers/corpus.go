package handlers

import (
	"net/http"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/server/dto"
)

// CorpusHandler serves corpus introspection endpoints (spec §6
// "corpus/stats").
type CorpusHandler struct {
	checker *plagiarismguard.Checker
}

// NewCorpusHandler creates a new corpus handler.
func NewCorpusHandler(checker *plagiarismguard.Checker) *CorpusHandler {
	return &CorpusHandler{checker: checker}
}

// Stats handles GET /api/v1/corpus/stats.
func (h *CorpusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.checker.Stats()
	status := "empty"
	if stats.Count > 0 {
		status = "ready"
	}
	writeJSON(w, http.StatusOK, dto.CorpusStatsResponse{
		TotalDocuments: stats.Count,
		Threshold:      stats.Threshold,
		Status:         status,
	})
}

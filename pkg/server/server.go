package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soundprediction/plagiarismguard"
	"github.com/soundprediction/plagiarismguard/pkg/config"
	"github.com/soundprediction/plagiarismguard/pkg/server/handlers"
)

// Server represents the HTTP server fronting a Checker.
type Server struct {
	config  *config.Config
	router  *chi.Mux
	checker *plagiarismguard.Checker
	server  *http.Server
}

// New creates a new server instance.
func New(cfg *config.Config, checker *plagiarismguard.Checker) *Server {
	return &Server{
		config:  cfg,
		checker: checker,
	}
}

// Setup sets up the server routes and middleware.
func (s *Server) Setup() {
	s.router = chi.NewRouter()

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(corsMiddleware)

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes registers the health, check, compare and corpus routes.
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.checker)
	checkHandler := handlers.NewCheckHandler(s.checker)
	compareHandler := handlers.NewCompareHandler(s.checker)
	corpusHandler := handlers.NewCorpusHandler(s.checker)
	alignHandler := handlers.NewAlignHandler(s.checker)

	s.router.Get("/health", healthHandler.HealthCheck)
	s.router.Get("/healthcheck", healthHandler.HealthCheck) // legacy alias
	s.router.Get("/ready", healthHandler.ReadinessCheck)
	s.router.Get("/live", healthHandler.LivenessCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", checkHandler.Check)
		r.Post("/compare", compareHandler.Compare)
		r.Get("/corpus/stats", corpusHandler.Stats)
		r.Post("/align", alignHandler.Align)
	})
}

// Start starts the server.
func (s *Server) Start() error {
	log.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	log.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds permissive CORS headers for the check/compare/stats
// endpoints, matching the teacher's server-wide CORS policy.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{id}", s.handleGetDevice)
			r.Get("/{id}/variables/{name}", s.handleGetVariable)
		})

		r.Route("/sparks", func(r chi.Router) {
			r.Get("/", s.handleListSparks)
			r.Get("/cache-options", s.handleCacheOptions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSpark)
				r.Get("/value", s.handleSparkValue)
				r.Get("/status", s.handleSparkStatus)
				r.Get("/snapshot", s.handleSparkSnapshot)
			})
		})

		// Admin routes exist only when a signing secret is configured.
		if s.secCfg.JWT.Secret != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.authMiddleware)

				r.Get("/diagnostics", s.handleListDiagnostics)
				r.Delete("/diagnostics", s.handleClearDiagnostics)
				r.Delete("/cache", s.handlePurgeCache)
			})
		}
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"version":          s.version,
		"token_configured": s.client.Configured(),
		"sparks":           s.sparks.Registry().Count(),
	})
}

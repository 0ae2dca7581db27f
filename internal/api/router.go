package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/alphasign-core/internal/auth"
)

// defaultMetricsPath is used when metrics.path is empty.
const defaultMetricsPath = "/metrics"

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Compatibility endpoints. All are GET with query parameters.
	r.Get("/status", s.handleStatus)
	r.Get("/help", s.handleHelp)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware(auth.PermSignOperate))

		r.Get("/AlphaSign", s.handleAlphaSign)
		r.Get("/settime", s.handleSetTime)
		r.Get("/setdate", s.handleSetDate)
		r.Get("/sound", s.handleSound)
		r.Get("/reset", s.handleReset)
		r.Get("/memory", s.handleMemory)
		r.Get("/tone", s.handleTone)
		r.Get("/runtime", s.handleRunTime)
		r.Get("/display", s.handleDisplay)
		r.Get("/dimming", s.handleDimming)
	})

	if s.collector != nil && s.metricsCfg.Enabled {
		path := s.metricsCfg.Path
		if path == "" {
			path = defaultMetricsPath
		}
		r.Handle(path, s.collector.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// System metrics (no auth required for basic monitoring)
		r.Get("/metrics", s.handleMetrics)

		// Encoding is a pure function of the request.
		r.Post("/encode", s.handleEncode)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermHistoryRead))
			r.Get("/history", s.handleHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermSignOperate))
			r.Post("/commands/{name}", s.handleCommand)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware(auth.PermTokenIssue))
			r.Post("/auth/token", s.handleIssueToken)
		})

		// WebSocket (auth via token query parameter, validated in handler)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	signStats := s.sign.Stats()
	if !signStats.Connected && signStats.LastError != "" {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"version":        s.version,
		"sign_id":        s.sign.ID(),
		"sign_connected": signStats.Connected,
	})
}

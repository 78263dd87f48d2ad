package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/lobby", s.handleLobby)

		api.Route("/captures", func(cr chi.Router) {
			cr.Post("/", s.handleCreateCapture)
			cr.Get("/{captureID}", s.handleGetCapture)
			cr.Get("/{captureID}/stream", s.handleCaptureStream)
			cr.Post("/{captureID}/end", s.handleEndCapture)
			cr.Delete("/{captureID}", s.handleDeleteCapture)
		})

		api.Route("/workflows", func(wr chi.Router) {
			wr.Post("/", s.handleCreateWorkflow)
			wr.Get("/{workflowID}", s.handleGetWorkflow)
			wr.Delete("/{workflowID}", s.handleDeleteWorkflow)
			wr.Post("/{workflowID}/upload", s.handleUpload)
			wr.Put("/{workflowID}/transcript", s.handleEditTranscript)
			wr.Get("/{workflowID}/transcript", s.handleExportTranscript)
			wr.Post("/{workflowID}/summary", s.handleGenerateSummary)
			wr.Get("/{workflowID}/summary", s.handleExportSummary)
			wr.Post("/{workflowID}/email", s.handleSendEmail)
			wr.Post("/{workflowID}/reset", s.handleReset)
			wr.Delete("/{workflowID}/error", s.handleClearError)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

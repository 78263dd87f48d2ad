// Package httpapi serves the debrief workflow over HTTP for a single local user.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/export"
	"github.com/foxseedlab/debrief/internal/validation"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/gorilla/websocket"
)

const (
	maxJSONBodyBytes   = 1 << 20
	maxUploadBodyBytes = validation.MaxAudioFileSize + 1<<20
	shutdownTimeout    = 10 * time.Second
)

type Server struct {
	addr           string
	allowedOrigins []string
	workflows      *workflow.Service
	captures       *capture.Manager
	renderer       export.DocumentRenderer
	upgrader       websocket.Upgrader
}

func NewServer(addr string, allowedOrigins []string, workflows *workflow.Service, captures *capture.Manager, renderer export.DocumentRenderer) *Server {
	s := &Server{
		addr:           addr,
		allowedOrigins: normalizeOrigins(allowedOrigins),
		workflows:      workflows,
		captures:       captures,
		renderer:       renderer,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(s.allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	slog.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

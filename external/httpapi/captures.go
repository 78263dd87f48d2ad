package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/foxseedlab/debrief/internal/lobby"
	"github.com/go-chi/chi/v5"
)

type createCaptureRequest struct {
	Roster string `json:"roster"`
}

func (s *Server) capture(w http.ResponseWriter, r *http.Request) (*capture.Session, bool) {
	session, err := s.captures.Get(chi.URLParam(r, "captureID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return session, true
}

func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	var req createCaptureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var invitees []handoff.Participant
	if req.Roster != "" {
		var err error
		if invitees, err = handoff.DecodeRoster(req.Roster); err != nil {
			writeError(w, err)
			return
		}
	}
	session := s.captures.Create(lobby.Roster(invitees))
	writeJSON(w, http.StatusCreated, session.Status())
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := s.capture(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Status())
}

// handleCaptureStream upgrades to a WebSocket that acts as the session's
// microphone. It returns once the client disconnects or the device is released.
func (s *Server) handleCaptureStream(w http.ResponseWriter, r *http.Request) {
	session, ok := s.capture(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "capture_id", session.ID())
		return
	}
	device := newStreamDevice(conn)
	go device.readPump()

	if err := session.Start(r.Context(), device); err != nil {
		device.sendError(err.Error(), apperror.KindOf(err))
		device.Release()
		return
	}
	<-device.Done()
	slog.Info("capture stream closed", "capture_id", session.ID())
}

func (s *Server) handleEndCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := s.capture(w, r)
	if !ok {
		return
	}
	result, err := session.End(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	if !s.captures.Remove(chi.URLParam(r, "captureID")) {
		writeError(w, apperror.NotFound("Meeting not found. It may have expired."))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

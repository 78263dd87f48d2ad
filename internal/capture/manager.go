package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/lobby"
	"github.com/foxseedlab/debrief/internal/transcriber"
	"github.com/google/uuid"
)

const messageCaptureNotFound = "Meeting not found. It may have expired."

type Manager struct {
	transcriber     transcriber.Transcriber
	finalizeTimeout time.Duration
	idleTTL         time.Duration
	now             func() time.Time
	newID           func() string

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(stt transcriber.Transcriber, finalizeTimeout, idleTTL time.Duration) *Manager {
	if finalizeTimeout <= 0 {
		finalizeTimeout = DefaultFinalizeTimeout
	}
	return &Manager{
		transcriber:     stt,
		finalizeTimeout: finalizeTimeout,
		idleTTL:         idleTTL,
		now:             time.Now,
		newID:           uuid.NewString,
		sessions:        make(map[string]*Session),
	}
}

func (m *Manager) Create(participants []lobby.Participant) *Session {
	s := newSession(m.newID(), participants, m.transcriber, m.finalizeTimeout, m.now)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	total := len(m.sessions)
	m.mu.Unlock()
	slog.Info("capture session created", "capture_id", s.ID(), "participants", len(participants), "sessions", total)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperror.NotFound(messageCaptureNotFound)
	}
	return s, nil
}

// Remove closes the session, releasing its device if it is still recording.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)
	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		slog.Info("idle capture sessions swept", "removed", len(stale), "remaining", remaining)
	}
	return len(stale)
}

func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// CloseAll releases every device; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

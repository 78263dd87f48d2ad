package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/google/uuid"
)

// Service keeps workflows in memory until they go idle.
type Service struct {
	deps    Dependencies
	idleTTL time.Duration
	now     func() time.Time
	newID   func() string

	mu        sync.Mutex
	workflows map[string]*Workflow
}

func NewService(deps Dependencies, idleTTL time.Duration) *Service {
	return &Service{
		deps:      deps,
		idleTTL:   idleTTL,
		now:       time.Now,
		newID:     uuid.NewString,
		workflows: make(map[string]*Workflow),
	}
}

func (s *Service) Create() *Workflow {
	w := newWorkflow(s.newID(), s.deps, s.now)
	s.mu.Lock()
	s.workflows[w.ID()] = w
	total := len(s.workflows)
	s.mu.Unlock()
	slog.Info("workflow created", "workflow_id", w.ID(), "workflows", total)
	return w
}

// CreateFromHandoff starts a workflow seeded with the transcript returned by a
// finished meeting capture.
func (s *Service) CreateFromHandoff(token string) (*Workflow, error) {
	payload, err := handoff.DecodeTranscript(token)
	if err != nil {
		return nil, err
	}
	w := s.Create()
	w.seed(payload.Source, payload.Transcript)
	slog.Info("workflow seeded from handoff", "workflow_id", w.ID(), "source", payload.Source)
	return w, nil
}

func (s *Service) Get(id string) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[id]
	if !ok {
		return nil, apperror.NotFound(messageWorkflowNotFound)
	}
	return w, nil
}

func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return false
	}
	delete(s.workflows, id)
	return true
}

// Sweep drops workflows that have been idle longer than the TTL and are not
// running an operation. It returns how many were removed.
func (s *Service) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, w := range s.workflows {
		if w.idleSince(cutoff) {
			delete(s.workflows, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("idle workflows swept", "removed", removed, "remaining", len(s.workflows))
	}
	return removed
}

func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

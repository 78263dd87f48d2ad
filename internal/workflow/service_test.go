package workflow

import (
	"testing"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/handoff"
)

func TestService_GetUnknown(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Get("missing"); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_CreateFromHandoff(t *testing.T) {
	svc, _ := newTestService()
	token, err := handoff.EncodeTranscript("meeting transcript")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := svc.CreateFromHandoff(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := w.Snapshot()
	if s.Source != SourceMeeting || s.Transcript != "meeting transcript" {
		t.Fatalf("unexpected seeded state: %+v", s)
	}
	got, err := svc.Get(w.ID())
	if err != nil || got != w {
		t.Fatalf("expected workflow to be registered, got %v", err)
	}
}

func TestService_CreateFromHandoffRejectsBadToken(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.CreateFromHandoff("not-a-token"); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_SweepRemovesIdleWorkflows(t *testing.T) {
	svc, _ := newTestService()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stale := svc.Create()
	now = now.Add(90 * time.Minute)
	fresh := svc.Create()
	now = now.Add(30 * time.Minute)

	if removed := svc.Sweep(); removed != 1 {
		t.Fatalf("expected one removal, got %d", removed)
	}
	if _, err := svc.Get(stale.ID()); err == nil {
		t.Fatal("expected stale workflow to be removed")
	}
	if _, err := svc.Get(fresh.ID()); err != nil {
		t.Fatalf("expected fresh workflow to remain, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService()
	w := svc.Create()
	if !svc.Delete(w.ID()) {
		t.Fatal("expected delete to succeed")
	}
	if svc.Delete(w.ID()) {
		t.Fatal("expected second delete to report false")
	}
}

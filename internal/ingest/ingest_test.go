package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/summarizer"
	"github.com/foxseedlab/debrief/internal/validation"
	"github.com/foxseedlab/debrief/internal/workflow"
)

type mockTranscriber struct {
	calls []audio.Artifact
}

func (m *mockTranscriber) Transcribe(_ context.Context, a audio.Artifact) (string, error) {
	m.calls = append(m.calls, a)
	return "transcribed " + a.Name, nil
}

type mockSummarizer struct{}

func (mockSummarizer) Summarize(context.Context, string) (summarizer.Result, error) {
	return summarizer.Result{Summary: "short", ActionItems: []string{"one"}}, nil
}

func newWorkflow(stt *mockTranscriber) *workflow.Workflow {
	svc := workflow.NewService(workflow.Dependencies{Transcriber: stt, Summarizer: mockSummarizer{}}, time.Hour)
	return svc.Create()
}

func TestSubmit_TranscribesValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standup.m4a")
	if err := os.WriteFile(path, []byte("m4a-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	stt := &mockTranscriber{}
	wf := newWorkflow(stt)

	if err := Submit(context.Background(), wf, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stt.calls) != 1 || stt.calls[0].MediaType != "audio/m4a" || string(stt.calls[0].Data) != "m4a-bytes" {
		t.Fatalf("unexpected transcriber calls: %+v", stt.calls)
	}
	if st := wf.Snapshot(); st.Transcript != "transcribed standup.m4a" || st.SourceName != "standup.m4a" {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestSubmit_RejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	stt := &mockTranscriber{}
	wf := newWorkflow(stt)

	err := Submit(context.Background(), wf, path)
	if apperror.KindOf(err) != apperror.KindValidation || err.Error() != validation.MessageUnsupportedAudioType {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
	if len(stt.calls) != 0 {
		t.Fatal("transcriber must not be called")
	}
	if wf.Snapshot().Error != validation.MessageUnsupportedAudioType {
		t.Fatal("expected error slot to be set")
	}
}

func TestSubmit_MissingFile(t *testing.T) {
	wf := newWorkflow(&mockTranscriber{})
	if err := Submit(context.Background(), wf, filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	written, err := WriteOutputs(dir, workflow.State{
		SourceName:  "standup.mp3",
		Transcript:  "hello",
		Summary:     "short",
		ActionItems: []string{"one"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected two files, got %v", written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "standup.mp3_summary.txt"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if string(b) != "Summary:\nshort\n\nAction Items:\n1. one" {
		t.Fatalf("unexpected summary file: %q", b)
	}
	if b, _ := os.ReadFile(filepath.Join(dir, "standup.mp3.txt")); string(b) != "hello" {
		t.Fatalf("unexpected transcript file: %q", b)
	}

	written, err = WriteOutputs(dir, workflow.State{})
	if err != nil || len(written) != 0 {
		t.Fatalf("expected nothing written for empty state, got %v, %v", written, err)
	}
}

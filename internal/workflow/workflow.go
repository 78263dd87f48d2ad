package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/export"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/foxseedlab/debrief/internal/mailer"
	"github.com/foxseedlab/debrief/internal/share"
	"github.com/foxseedlab/debrief/internal/summarizer"
	"github.com/foxseedlab/debrief/internal/transcriber"
	"github.com/foxseedlab/debrief/internal/validation"
)

const (
	SourceUpload  = "upload"
	SourceMeeting = handoff.SourceMeeting
)

const shareTimeout = 15 * time.Second

// State is a point-in-time copy of everything a workflow owns.
type State struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	SourceName        string    `json:"sourceName"`
	Transcript        string    `json:"transcript"`
	Summary           string    `json:"summary"`
	ActionItems       []string  `json:"actionItems"`
	Error             string    `json:"error"`
	Processing        bool      `json:"processing"`
	GeneratingSummary bool      `json:"generatingSummary"`
	SendingEmail      bool      `json:"sendingEmail"`
	EmailSent         bool      `json:"emailSent"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (s State) busy() bool {
	return s.Processing || s.GeneratingSummary || s.SendingEmail
}

type Dependencies struct {
	Transcriber  transcriber.Transcriber
	Summarizer   summarizer.Summarizer
	Mailer       mailer.Sender
	Notifier     share.Notifier
	EmailSubject string
}

type operation int

const (
	opProcessing operation = iota + 1
	opSummary
	opEmail
)

func (o operation) String() string {
	switch o {
	case opProcessing:
		return "transcribe"
	case opSummary:
		return "summarize"
	case opEmail:
		return "email"
	default:
		return "unknown"
	}
}

// Workflow holds the state of one upload-or-meeting debrief. At most one
// remote operation runs at a time; a second one is rejected with a conflict.
type Workflow struct {
	id   string
	deps Dependencies
	now  func() time.Time

	mu    sync.Mutex
	state State
	// epoch changes on Reset so results of in-flight calls are dropped.
	epoch int
}

func newWorkflow(id string, deps Dependencies, now func() time.Time) *Workflow {
	w := &Workflow{id: id, deps: deps, now: now}
	w.state = State{ID: id, Source: SourceUpload, ActionItems: []string{}, UpdatedAt: now()}
	return w
}

func (w *Workflow) ID() string {
	return w.id
}

func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() State {
	s := w.state
	s.ActionItems = append([]string{}, w.state.ActionItems...)
	return s
}

// SubmitFile transcribes an uploaded or recorded artifact. A non-nil
// validationErr is surfaced as-is and nothing is transcribed.
func (w *Workflow) SubmitFile(ctx context.Context, artifact audio.Artifact, validationErr error) error {
	if validationErr != nil {
		err := asValidationError(validationErr)
		w.mu.Lock()
		w.state.Error = err.Message
		w.touchLocked()
		w.mu.Unlock()
		slog.Info("file rejected", "workflow_id", w.ID(), "file", artifact.Name, "reason", err.Message)
		return err
	}

	epoch, err := w.begin(opProcessing, nil)
	if err != nil {
		return err
	}
	slog.Info("transcription started", "workflow_id", w.ID(), "file", artifact.Name, "media_type", artifact.MediaType, "bytes", artifact.Size())
	text, callErr := w.deps.Transcriber.Transcribe(ctx, artifact)

	return w.finish(opProcessing, epoch, callErr, func(s *State) {
		s.Transcript = text
		s.SourceName = artifact.Name
		s.Source = SourceUpload
	})
}

func (w *Workflow) EditTranscript(text string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Transcript = text
	w.touchLocked()
	return w.snapshotLocked()
}

func (w *Workflow) GenerateSummary(ctx context.Context) error {
	var transcript string
	epoch, err := w.begin(opSummary, func(s *State) *apperror.Error {
		if strings.TrimSpace(s.Transcript) == "" {
			return apperror.Validation(messageNoTranscript)
		}
		transcript = s.Transcript
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("summary generation started", "workflow_id", w.ID(), "transcript_chars", len(transcript))
	result, callErr := w.deps.Summarizer.Summarize(ctx, transcript)

	return w.finish(opSummary, epoch, callErr, func(s *State) {
		s.Summary = result.Summary
		s.ActionItems = append([]string{}, result.ActionItems...)
	})
}

// SendEmail validates addressText and delivers the current summary. EmailSent
// is set only after the mailer confirms delivery.
func (w *Workflow) SendEmail(ctx context.Context, addressText string) error {
	var (
		recipients []string
		msg        mailer.Message
		debrief    share.Debrief
	)
	epoch, err := w.begin(opEmail, func(s *State) *apperror.Error {
		if s.Summary == "" && len(s.ActionItems) == 0 {
			return apperror.Validation(messageSummaryFirst)
		}
		if strings.TrimSpace(addressText) == "" {
			return apperror.Validation(messageNoEmailAddress)
		}
		result := validation.ValidateEmails(addressText)
		if len(result.Invalid) > 0 {
			return apperror.Validation(invalidEmailsMessage(result.Invalid))
		}
		recipients = result.Valid
		items := append([]string{}, s.ActionItems...)
		msg = mailer.Message{
			Recipients:  recipients,
			Subject:     w.deps.EmailSubject,
			Summary:     s.Summary,
			ActionItems: items,
			Body:        emailBody(export.SummaryText(s.Summary, items)),
		}
		debrief = share.Debrief{
			WorkflowID:  s.ID,
			SourceName:  s.SourceName,
			Summary:     s.Summary,
			ActionItems: items,
			Recipients:  recipients,
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("email delivery started", "workflow_id", w.ID(), "recipients", len(recipients))
	callErr := w.deps.Mailer.Send(ctx, msg)

	if err := w.finish(opEmail, epoch, callErr, func(s *State) {
		s.EmailSent = true
	}); err != nil {
		return err
	}
	if w.deps.Notifier != nil {
		go w.notify(context.WithoutCancel(ctx), debrief)
	}
	return nil
}

func (w *Workflow) notify(ctx context.Context, d share.Debrief) {
	ctx, cancel := context.WithTimeout(ctx, shareTimeout)
	defer cancel()
	if err := w.deps.Notifier.NotifyDebrief(ctx, d); err != nil {
		slog.Error("failed to share debrief", "error", err, "workflow_id", d.WorkflowID)
		return
	}
	slog.Info("debrief shared", "workflow_id", d.WorkflowID)
}

// Reset returns the workflow to its initial state. Results of calls still in
// flight are discarded when they complete.
func (w *Workflow) Reset() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.epoch++
	w.state.Transcript = ""
	w.state.SourceName = ""
	w.state.Source = SourceUpload
	w.state.Summary = ""
	w.state.ActionItems = []string{}
	w.state.Error = ""
	w.state.EmailSent = false
	w.touchLocked()
	return w.snapshotLocked()
}

func (w *Workflow) ClearError() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Error = ""
	w.touchLocked()
	return w.snapshotLocked()
}

func (w *Workflow) seed(source, transcript string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Source = source
	w.state.Transcript = transcript
}

func (w *Workflow) idleSince(cutoff time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.state.busy() && w.state.UpdatedAt.Before(cutoff)
}

// begin marks op busy after checking that nothing else is running and that
// precondition holds. A failed precondition is stored in the error slot.
func (w *Workflow) begin(op operation, precondition func(*State) *apperror.Error) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.busy() {
		slog.Info("operation rejected while busy", "workflow_id", w.id, "operation", op.String())
		return 0, apperror.Conflict(messageBusy)
	}
	if precondition != nil {
		if err := precondition(&w.state); err != nil {
			w.state.Error = err.Message
			w.touchLocked()
			return 0, err
		}
	}
	w.setBusyLocked(op, true)
	w.state.Error = ""
	w.touchLocked()
	return w.epoch, nil
}

func (w *Workflow) finish(op operation, epoch int, callErr error, apply func(*State)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setBusyLocked(op, false)
	w.touchLocked()
	if epoch != w.epoch {
		slog.Info("discarding result after reset", "workflow_id", w.id, "operation", op.String())
		return nil
	}
	if callErr != nil {
		appErr := apperror.Remote(validation.FormatErrorMessage(callErr), callErr)
		w.state.Error = appErr.Message
		slog.Error("operation failed", "error", callErr, "workflow_id", w.id, "operation", op.String())
		return appErr
	}
	apply(&w.state)
	slog.Info("operation completed", "workflow_id", w.id, "operation", op.String())
	return nil
}

func (w *Workflow) setBusyLocked(op operation, busy bool) {
	switch op {
	case opProcessing:
		w.state.Processing = busy
	case opSummary:
		w.state.GeneratingSummary = busy
	case opEmail:
		w.state.SendingEmail = busy
	}
}

func (w *Workflow) touchLocked() {
	w.state.UpdatedAt = w.now()
}

func asValidationError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &apperror.Error{Kind: apperror.KindValidation, Message: err.Error(), Err: err}
}

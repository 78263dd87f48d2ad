package capture

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/apperror"
	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/foxseedlab/debrief/internal/lobby"
	"github.com/foxseedlab/debrief/internal/transcriber"
	"github.com/foxseedlab/debrief/internal/validation"
)

type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateStopped      State = "stopped"
	StateTranscribing State = "transcribing"
	StateRedirected   State = "redirected"
	StateError        State = "error"
)

const (
	DefaultFinalizeTimeout = 5 * time.Second
	DefaultTimeslice       = time.Second

	messageDeviceDenied   = "Failed to access microphone. Please check your permissions."
	messageFinalizeFailed = "Failed to create audio recording. Please try again."
	messageNotRecording   = "No recording in progress. Please start a meeting first."
	messageAlreadyStarted = "The meeting has already started."
	messageClosed         = "The meeting has ended."
	messageInterrupted    = "The recording was interrupted. Please start the meeting again."
)

type Status struct {
	ID             string              `json:"id"`
	State          State               `json:"state"`
	Error          string              `json:"error"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
	Chunks         int                 `json:"chunks"`
	Bytes          int                 `json:"bytes"`
	Participants   []lobby.Participant `json:"participants"`
}

type Result struct {
	Transcript string `json:"transcript"`
	Handoff    string `json:"handoff"`
}

// Session records one live meeting and hands the finished recording to the
// transcriber.
type Session struct {
	id              string
	participants    []lobby.Participant
	transcriber     transcriber.Transcriber
	finalizeTimeout time.Duration
	tick            time.Duration
	now             func() time.Time

	mu        sync.Mutex
	state     State
	errMsg    string
	starting  bool
	closed    bool
	elapsed   int
	chunks    [][]byte
	size      int
	recorder  Recorder
	finalized chan struct{}
	stopTimer chan struct{}
	updatedAt time.Time
}

func newSession(id string, participants []lobby.Participant, stt transcriber.Transcriber, finalizeTimeout time.Duration, now func() time.Time) *Session {
	return &Session{
		id:              id,
		participants:    participants,
		transcriber:     stt,
		finalizeTimeout: finalizeTimeout,
		tick:            time.Second,
		now:             now,
		state:           StateIdle,
		updatedAt:       now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ID:             s.id,
		State:          s.state,
		Error:          s.errMsg,
		ElapsedSeconds: s.elapsed,
		Chunks:         len(s.chunks),
		Bytes:          s.size,
		Participants:   append([]lobby.Participant{}, s.participants...),
	}
}

// Start acquires the device and begins collecting chunks. A refused device
// leaves the session in StateError.
func (s *Session) Start(ctx context.Context, device Device) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperror.Conflict(messageClosed)
	}
	if s.starting || (s.state != StateIdle && s.state != StateError) {
		s.mu.Unlock()
		return apperror.Conflict(messageAlreadyStarted)
	}
	s.starting = true
	s.mu.Unlock()

	rec, err := device.Acquire(ctx, DefaultConstraints, DefaultTimeslice)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	s.touchLocked()
	if err != nil {
		s.state = StateError
		s.errMsg = messageDeviceDenied
		slog.Warn("failed to acquire audio device", "error", err, "capture_id", s.id)
		return apperror.Device(messageDeviceDenied, err)
	}
	if s.closed {
		rec.Release()
		return apperror.Conflict(messageClosed)
	}

	s.state = StateRecording
	s.errMsg = ""
	s.elapsed = 0
	s.chunks = nil
	s.size = 0
	s.recorder = rec
	s.finalized = make(chan struct{})
	s.stopTimer = make(chan struct{})
	go s.collect(rec, s.finalized)
	go s.runTimer(s.stopTimer)
	slog.Info("recording started", "capture_id", s.id, "media_type", rec.MediaType(), "participants", len(s.participants))
	return nil
}

// collect appends chunks for the recording that owns finalized. A stream that
// ends while that recording is still running means the device went away, so
// the timer is cancelled and the recorder released.
func (s *Session) collect(rec Recorder, finalized chan struct{}) {
	for chunk := range rec.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		s.mu.Lock()
		if s.finalized == finalized {
			s.chunks = append(s.chunks, chunk)
			s.size += len(chunk)
			s.touchLocked()
		}
		s.mu.Unlock()
	}
	close(finalized)

	s.mu.Lock()
	lost := s.finalized == finalized && s.state == StateRecording
	if lost {
		s.cancelTimerLocked()
		s.state = StateError
		s.errMsg = messageInterrupted
		s.chunks = nil
		s.size = 0
		s.recorder = nil
		s.touchLocked()
	}
	s.mu.Unlock()

	if lost {
		rec.Release()
		slog.Warn("audio device went away while recording", "capture_id", s.id)
	}
}

func (s *Session) runTimer(stop chan struct{}) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.stopTimer != stop {
				s.mu.Unlock()
				return
			}
			s.elapsed++
			s.mu.Unlock()
		}
	}
}

// End stops the recording, waits for the final chunk, and transcribes the
// assembled artifact. The device is released whatever the outcome.
func (s *Session) End(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return Result{}, apperror.Conflict(messageNotRecording)
	}
	s.state = StateStopped
	s.cancelTimerLocked()
	rec := s.recorder
	finalized := s.finalized
	s.touchLocked()
	s.mu.Unlock()

	defer rec.Release()
	if err := rec.Stop(); err != nil {
		slog.Warn("recorder stop failed", "error", err, "capture_id", s.id)
	}

	if err := s.awaitFinalized(ctx, finalized); err != nil {
		s.mu.Lock()
		s.state = StateError
		s.errMsg = messageFinalizeFailed
		s.chunks = nil
		s.touchLocked()
		s.mu.Unlock()
		slog.Error("recording was not finalized", "error", err, "capture_id", s.id, "timeout", s.finalizeTimeout)
		return Result{}, apperror.Timeout(messageFinalizeFailed, err)
	}

	s.mu.Lock()
	artifact := audio.Artifact{
		Name:      audio.RecordingName,
		MediaType: recordingMediaType(rec.MediaType()),
		Data:      bytes.Join(s.chunks, nil),
	}
	s.chunks = nil
	s.state = StateTranscribing
	s.touchLocked()
	s.mu.Unlock()
	slog.Info("recording finalized", "capture_id", s.id, "bytes", artifact.Size())

	text, err := s.transcriber.Transcribe(ctx, artifact)
	if err == nil {
		var token string
		token, err = handoff.EncodeTranscript(text)
		if err == nil {
			s.setState(StateRedirected, "")
			slog.Info("meeting transcribed", "capture_id", s.id, "transcript_chars", len(text))
			return Result{Transcript: text, Handoff: token}, nil
		}
	}
	msg := validation.FormatErrorMessage(err)
	s.setState(StateError, msg)
	slog.Error("meeting transcription failed", "error", err, "capture_id", s.id)
	return Result{}, apperror.Remote(msg, err)
}

func (s *Session) awaitFinalized(ctx context.Context, finalized <-chan struct{}) error {
	timer := time.NewTimer(s.finalizeTimeout)
	defer timer.Stop()
	select {
	case <-finalized:
		return nil
	case <-timer.C:
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops a recording that is still running and releases the device.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	var rec Recorder
	if s.state == StateRecording {
		rec = s.recorder
		s.cancelTimerLocked()
		s.state = StateIdle
	}
	s.mu.Unlock()

	if rec != nil {
		if err := rec.Stop(); err != nil {
			slog.Warn("recorder stop failed on close", "error", err, "capture_id", s.id)
		}
		rec.Release()
		slog.Info("recording abandoned", "capture_id", s.id)
	}
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateStopped, StateTranscribing:
		return false
	}
	return !s.starting && s.updatedAt.Before(cutoff)
}

func (s *Session) setState(state State, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.errMsg = errMsg
	s.touchLocked()
}

func (s *Session) cancelTimerLocked() {
	if s.stopTimer != nil {
		close(s.stopTimer)
		s.stopTimer = nil
	}
}

func (s *Session) touchLocked() {
	s.updatedAt = s.now()
}

func recordingMediaType(declared string) string {
	base, _, err := mime.ParseMediaType(declared)
	if err != nil || base == "" {
		return audio.RecordingMediaType
	}
	return base
}

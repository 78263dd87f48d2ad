package capture

import (
	"context"
	"time"
)

type Constraints struct {
	EchoCancellation bool `json:"echoCancellation"`
	NoiseSuppression bool `json:"noiseSuppression"`
	SampleRate       int  `json:"sampleRate"`
}

// DefaultConstraints is what a meeting asks the microphone for.
var DefaultConstraints = Constraints{
	EchoCancellation: true,
	NoiseSuppression: true,
	SampleRate:       44100,
}

// Device grants access to an audio input. Acquire blocks until access is
// granted or refused.
type Device interface {
	Acquire(ctx context.Context, constraints Constraints, timeslice time.Duration) (Recorder, error)
}

// Recorder delivers encoded audio in roughly timeslice-sized chunks. After
// Stop, it flushes the final chunk and closes Chunks. Release frees the
// underlying device and is safe to call more than once.
type Recorder interface {
	MediaType() string
	Chunks() <-chan []byte
	Stop() error
	Release()
}

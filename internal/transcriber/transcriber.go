package transcriber

import (
	"context"

	"github.com/foxseedlab/debrief/internal/audio"
)

type Transcriber interface {
	Transcribe(ctx context.Context, artifact audio.Artifact) (string, error)
}

// Package ingest feeds audio files from disk into a workflow and writes the
// results back out as text files.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/export"
	"github.com/foxseedlab/debrief/internal/validation"
	"github.com/foxseedlab/debrief/internal/workflow"
)

// Submit validates the file at path like an upload and transcribes it into wf.
// The file is only read when it passes validation.
func Submit(ctx context.Context, wf *workflow.Workflow, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	name := filepath.Base(path)
	artifact := audio.Artifact{Name: name, MediaType: audio.MediaTypeFromPath(name)}
	if verr := validation.ValidateAudioFile(validation.AudioFile{
		Name:      name,
		MediaType: artifact.MediaType,
		Size:      info.Size(),
	}); verr != nil {
		return wf.SubmitFile(ctx, artifact, verr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	artifact.Data = data
	return wf.SubmitFile(ctx, artifact, nil)
}

// WriteOutputs writes the transcript, and the summary when there is one, into
// dir. It returns the paths written.
func WriteOutputs(dir string, st workflow.State) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	if st.Transcript != "" {
		path := filepath.Join(dir, export.TranscriptFilename(st.SourceName, export.FormatText))
		if err := os.WriteFile(path, []byte(st.Transcript), 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if st.Summary != "" || len(st.ActionItems) > 0 {
		path := filepath.Join(dir, export.SummaryFilename(st.SourceName, export.FormatText))
		if err := os.WriteFile(path, []byte(export.SummaryText(st.Summary, st.ActionItems)), 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

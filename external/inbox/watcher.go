// Package inbox turns audio files dropped into a folder into finished debriefs.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/ingest"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/fsnotify/fsnotify"
)

const defaultSettleDelay = 500 * time.Millisecond

type Config struct {
	Dir           string
	OutputDir     string
	MaxConcurrent int
	AutoSummarize bool
}

type Watcher struct {
	dir           string
	outputDir     string
	autoSummarize bool
	maxConcurrent int
	settleDelay   time.Duration
	workflows     *workflow.Service

	semaphore chan struct{}
	wg        sync.WaitGroup
}

func NewWatcher(cfg Config, workflows *workflow.Service) *Watcher {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Watcher{
		dir:           cfg.Dir,
		outputDir:     cfg.OutputDir,
		autoSummarize: cfg.AutoSummarize,
		maxConcurrent: maxConcurrent,
		settleDelay:   defaultSettleDelay,
		workflows:     workflows,
		semaphore:     make(chan struct{}, maxConcurrent),
	}
}

// Run watches the inbox until ctx is cancelled, then waits for files already
// being processed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}
	slog.Info("inbox watcher started", "dir", w.dir, "output_dir", w.outputDir, "max_concurrent", w.maxConcurrent, "auto_summarize", w.autoSummarize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("inbox watcher stopping, waiting for in-flight files")
			w.wg.Wait()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if audio.MediaTypeFromPath(event.Name) == "" {
				slog.Debug("ignoring non-audio file", "path", event.Name)
				continue
			}
			slog.Info("new audio file detected", "path", event.Name)
			select {
			case w.semaphore <- struct{}{}:
			case <-ctx.Done():
				w.wg.Wait()
				return nil
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				defer func() { <-w.semaphore }()
				if err := w.process(ctx, path); err != nil {
					slog.Error("failed to process inbox file", "error", err, "path", path)
				}
			}(event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			slog.Error("inbox watcher error", "error", err)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) error {
	// Give the writer a moment to finish the file.
	select {
	case <-time.After(w.settleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	wf := w.workflows.Create()
	if err := ingest.Submit(ctx, wf, path); err != nil {
		return err
	}
	if w.autoSummarize {
		if err := wf.GenerateSummary(ctx); err != nil {
			return err
		}
	}
	written, err := ingest.WriteOutputs(w.outputDir, wf.Snapshot())
	if err != nil {
		return err
	}
	slog.Info("inbox file processed", "path", filepath.Base(path), "workflow_id", wf.ID(), "outputs", written)
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/foxseedlab/debrief/internal/export"
	"github.com/foxseedlab/debrief/internal/ingest"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type runOptions struct {
	emails    string
	noSummary bool
	outputDir string
	format    string
}

func NewRunCmd(deps *Dependencies) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <audio-file>",
		Short: "Transcribe and summarize an audio file",
		Long:  "Transcribe an audio file, generate a summary with action items, and optionally email it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := do.Invoke[*workflow.Service](deps.Injector)
			if err != nil {
				return err
			}
			wf := workflows.Create()
			if err := ingest.Submit(cmd.Context(), wf, args[0]); err != nil {
				return err
			}
			return finishWorkflow(cmd.Context(), deps, wf, opts, cmd.OutOrStdout())
		},
	}
	addOutputFlags(cmd, opts)
	return cmd
}

func addOutputFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVarP(&opts.emails, "email", "e", "", "Comma-separated recipients for the summary")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "Stop after transcription")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Directory to write the transcript and summary into")
	cmd.Flags().StringVar(&opts.format, "format", export.FormatText, "Output file format: txt or docx")
}

// finishWorkflow summarizes, emails and writes out a workflow that already has a transcript.
func finishWorkflow(ctx context.Context, deps *Dependencies, wf *workflow.Workflow, opts *runOptions, out io.Writer) error {
	if opts.format != export.FormatText && opts.format != export.FormatDocx {
		return fmt.Errorf("unsupported format %q: use txt or docx", opts.format)
	}
	if !opts.noSummary {
		if err := wf.GenerateSummary(ctx); err != nil {
			return err
		}
	}
	if opts.emails != "" {
		if err := wf.SendEmail(ctx, opts.emails); err != nil {
			return err
		}
	}

	st := wf.Snapshot()
	fmt.Fprintf(out, "Transcript:\n%s\n", st.Transcript)
	if !opts.noSummary {
		fmt.Fprintf(out, "\n%s\n", export.SummaryText(st.Summary, st.ActionItems))
	}
	if st.EmailSent {
		fmt.Fprintln(out, "\nSummary emailed.")
	}
	if opts.outputDir == "" {
		return nil
	}

	written, err := writeFiles(ctx, deps, opts, st)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}

func writeFiles(ctx context.Context, deps *Dependencies, opts *runOptions, st workflow.State) ([]string, error) {
	if opts.format == export.FormatText {
		return ingest.WriteOutputs(opts.outputDir, st)
	}
	renderer, err := do.Invoke[export.DocumentRenderer](deps.Injector)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	data, err := renderer.RenderTranscript(ctx, "Transcript", st.Transcript)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(opts.outputDir, export.TranscriptFilename(st.SourceName, export.FormatDocx))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	written = append(written, path)

	if st.Summary != "" || len(st.ActionItems) > 0 {
		data, err := renderer.RenderSummary(ctx, "Meeting Summary", st.Summary, st.ActionItems)
		if err != nil {
			return written, err
		}
		path := filepath.Join(opts.outputDir, export.SummaryFilename(st.SourceName, export.FormatDocx))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

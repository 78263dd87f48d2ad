package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/handoff"
	"github.com/foxseedlab/debrief/internal/lobby"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	opts := &runOptions{}
	var duration time.Duration
	var invitees []string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a meeting from the local microphone",
		Long:  "Record from the configured ffmpeg input until Ctrl+C (or --duration), then transcribe and summarize it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return record(cmd, deps, opts, duration, invitees)
		},
	}
	addOutputFlags(cmd, opts)
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop automatically after this long")
	cmd.Flags().StringSliceVar(&invitees, "invite", nil, "Participant emails to list in the meeting")
	return cmd
}

func record(cmd *cobra.Command, deps *Dependencies, opts *runOptions, duration time.Duration, invitees []string) error {
	captures, err := do.Invoke[*capture.Manager](deps.Injector)
	if err != nil {
		return err
	}
	device, err := do.Invoke[capture.Device](deps.Injector)
	if err != nil {
		return err
	}
	workflows, err := do.Invoke[*workflow.Service](deps.Injector)
	if err != nil {
		return err
	}

	l := lobby.New()
	for _, email := range invitees {
		if _, err := l.Add(email); err != nil {
			return fmt.Errorf("%s: %w", email, err)
		}
	}
	session := captures.Create(lobby.Roster(l.Handoff()))
	defer captures.Remove(session.ID())

	ctx := cmd.Context()
	if err := session.Start(ctx, device); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Recording... press Ctrl+C to stop.")

	waitForStop(ctx, duration)
	fmt.Fprintf(out, "Recorded %ds, transcribing...\n", session.Status().ElapsedSeconds)

	result, err := session.End(ctx)
	if err != nil {
		return err
	}
	wf, err := workflows.CreateFromHandoff(result.Handoff)
	if err != nil {
		return err
	}
	slog.Info("recording handed off", "capture_id", session.ID(), "workflow_id", wf.ID(), "source", handoff.SourceMeeting)
	return finishWorkflow(ctx, deps, wf, opts, out)
}

// waitForStop blocks until an interrupt, the duration elapses, or ctx ends.
func waitForStop(ctx context.Context, duration time.Duration) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if duration <= 0 {
		<-sigCtx.Done()
		return
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-sigCtx.Done():
	}
}

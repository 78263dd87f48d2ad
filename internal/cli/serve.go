package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxSweepInterval = time.Minute

func NewServeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the debrief HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, deps)
		},
	}
}

func serve(ctx context.Context, deps *Dependencies) error {
	workflows, err := do.Invoke[*workflow.Service](deps.Injector)
	if err != nil {
		return err
	}
	captures, err := do.Invoke[*capture.Manager](deps.Injector)
	if err != nil {
		return err
	}
	services, err := deps.Services()
	if err != nil {
		return err
	}
	defer captures.CloseAll()

	workflowInterval := sweepInterval(deps.Config.WorkflowIdleTTL)
	captureInterval := sweepInterval(deps.Config.CaptureIdleTTL)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return workflows.RunSweeper(ctx, workflowInterval)
	})
	g.Go(func() error {
		return captures.RunSweeper(ctx, captureInterval)
	})
	for _, svc := range services {
		g.Go(func() error {
			return svc.Run(ctx)
		})
	}
	slog.Info("debrief serving", "addr", deps.Config.HTTPAddr, "workflow_sweep_interval", workflowInterval, "capture_sweep_interval", captureInterval, "services", len(services))
	err = g.Wait()
	slog.Info("debrief stopped")
	return err
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval <= 0 || interval > maxSweepInterval {
		return maxSweepInterval
	}
	return interval
}

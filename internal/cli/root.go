// Package cli exposes the debrief workflow as terminal commands.
package cli

import (
	"context"

	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/version"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// BackgroundService is a long-running component started by serve.
type BackgroundService interface {
	Run(ctx context.Context) error
}

type Dependencies struct {
	Config   *config.Config
	Injector do.Injector
	// Services resolves what serve runs alongside the sweepers.
	Services func() ([]BackgroundService, error)
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "debrief",
		Short:         "Turn meeting audio into transcripts, summaries and action items",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewRunCmd(deps))
	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.Full())
		},
	}
}

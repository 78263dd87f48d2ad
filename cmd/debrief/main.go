package main

import (
	"fmt"
	"log/slog"
	"os"

	configloader "github.com/foxseedlab/debrief/external/config"
	deviceimpl "github.com/foxseedlab/debrief/external/device"
	exportimpl "github.com/foxseedlab/debrief/external/export"
	"github.com/foxseedlab/debrief/external/httpapi"
	"github.com/foxseedlab/debrief/external/inbox"
	mailerimpl "github.com/foxseedlab/debrief/external/mailer"
	shareimpl "github.com/foxseedlab/debrief/external/share"
	summarizerimpl "github.com/foxseedlab/debrief/external/summarizer"
	transcriberimpl "github.com/foxseedlab/debrief/external/transcriber"
	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/cli"
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/samber/do/v2"
)

func main() {
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Debug("startup: configuration loaded", "env", cfg.Env, "transcriber", cfg.Transcriber, "summarizer", cfg.Summarizer)

	injector := setupDI(cfg)
	deps := &cli.Dependencies{
		Config:   cfg,
		Injector: injector,
		Services: func() ([]cli.BackgroundService, error) {
			return backgroundServices(cfg, injector)
		},
	}
	if err := cli.NewRootCmd(deps).Execute(); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// initLogger writes JSON logs to stderr so command output on stdout stays clean.
func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	transcriberimpl.RegisterDI(injector)
	summarizerimpl.RegisterDI(injector)
	mailerimpl.RegisterDI(injector)
	shareimpl.RegisterDI(injector)
	exportimpl.RegisterDI(injector)
	deviceimpl.RegisterDI(injector)
	workflow.RegisterDI(injector)
	capture.RegisterDI(injector)
	httpapi.RegisterDI(injector)
	inbox.RegisterDI(injector)

	return injector
}

func backgroundServices(cfg *config.Config, injector do.Injector) ([]cli.BackgroundService, error) {
	server, err := do.Invoke[*httpapi.Server](injector)
	if err != nil {
		return nil, err
	}
	services := []cli.BackgroundService{server}
	if cfg.InboxDir != "" {
		watcher, err := do.Invoke[*inbox.Watcher](injector)
		if err != nil {
			return nil, err
		}
		services = append(services, watcher)
	}
	return services, nil
}

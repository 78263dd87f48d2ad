package httpapi

import (
	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/export"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewServer(
			cfg.HTTPAddr,
			cfg.CORSAllowedOrigins,
			do.MustInvoke[*workflow.Service](i),
			do.MustInvoke[*capture.Manager](i),
			do.MustInvoke[export.DocumentRenderer](i),
		), nil
	})
}

package inbox

import (
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/workflow"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Watcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewWatcher(Config{
			Dir:           cfg.InboxDir,
			OutputDir:     cfg.InboxOutputDir,
			MaxConcurrent: cfg.InboxMaxConcurrent,
			AutoSummarize: cfg.InboxAutoSummarize,
		}, do.MustInvoke[*workflow.Service](i)), nil
	})
}

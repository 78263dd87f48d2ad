package workflow

import (
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/mailer"
	"github.com/foxseedlab/debrief/internal/share"
	"github.com/foxseedlab/debrief/internal/summarizer"
	"github.com/foxseedlab/debrief/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewService(Dependencies{
			Transcriber:  do.MustInvoke[transcriber.Transcriber](i),
			Summarizer:   do.MustInvoke[summarizer.Summarizer](i),
			Mailer:       do.MustInvoke[mailer.Sender](i),
			Notifier:     do.MustInvoke[share.Notifier](i),
			EmailSubject: cfg.EmailSubject,
		}, cfg.WorkflowIdleTTL), nil
	})
}

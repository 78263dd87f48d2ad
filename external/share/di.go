package share

import (
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/share"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (share.Notifier, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewDiscordWebhookNotifier(c.ShareDiscordWebhookURL)
	})
}

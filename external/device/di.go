package device

import (
	"github.com/foxseedlab/debrief/internal/capture"
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (capture.Device, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewFFmpegDevice(FFmpegConfig{
			Path:        c.FFmpegPath,
			InputFormat: c.FFmpegInputFormat,
			InputDevice: c.FFmpegInputDevice,
		}), nil
	})
}

package export

import (
	"github.com/foxseedlab/debrief/internal/export"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (export.DocumentRenderer, error) {
		return NewDocxRenderer(), nil
	})
}

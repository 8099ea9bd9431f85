package modules

import (
	"github.com/peopleforge/peopleforge/modules/directory"
	"github.com/peopleforge/peopleforge/modules/onboarding"
	"github.com/peopleforge/peopleforge/pkg/application"
)

// BuiltInModules in registration order: onboarding resolves directory
// services, so directory registers first.
var BuiltInModules = []application.Module{
	directory.NewModule(),
	onboarding.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}

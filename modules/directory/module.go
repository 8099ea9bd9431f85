package directory

import (
	"embed"

	"github.com/peopleforge/peopleforge/modules/directory/infrastructure/persistence"
	"github.com/peopleforge/peopleforge/modules/directory/presentation/controllers"
	"github.com/peopleforge/peopleforge/modules/directory/services"
	"github.com/peopleforge/peopleforge/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(m.Name(), &MigrationFiles, "infrastructure/persistence/schema")
	app.RegisterServices(
		services.NewEmployeeService(persistence.NewEmployeeRepository(), app.EventPublisher()),
		services.NewReferenceService(persistence.NewDepartmentRepository(), persistence.NewPositionRepository()),
	)
	app.RegisterControllers(controllers.NewEmployeeController(app))
	return nil
}

func (m *Module) Name() string {
	return "directory"
}

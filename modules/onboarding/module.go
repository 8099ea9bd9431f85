package onboarding

import (
	"context"
	"embed"

	directoryservices "github.com/peopleforge/peopleforge/modules/directory/services"
	"github.com/peopleforge/peopleforge/modules/onboarding/handlers"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/oracle"
	"github.com/peopleforge/peopleforge/modules/onboarding/infrastructure/persistence"
	"github.com/peopleforge/peopleforge/modules/onboarding/presentation/controllers"
	"github.com/peopleforge/peopleforge/modules/onboarding/services"
	"github.com/peopleforge/peopleforge/pkg/application"
	"github.com/peopleforge/peopleforge/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	app.Migrations().RegisterSchema(m.Name(), &MigrationFiles, "infrastructure/persistence/schema")

	employees := app.Service(directoryservices.EmployeeService{}).(*directoryservices.EmployeeService)
	reference := app.Service(directoryservices.ReferenceService{}).(*directoryservices.ReferenceService)

	var o oracle.Oracle = oracle.Disabled{}
	if conf.Oracle.Enabled && conf.Oracle.APIKey != "" {
		o = oracle.NewChatOracle(oracle.ChatOracleConfig{
			BaseURL: conf.Oracle.BaseURL,
			APIKey:  conf.Oracle.APIKey,
			Model:   conf.Oracle.Model,
			Timeout: conf.Oracle.Timeout,
		})
	}

	imports := services.NewImportService(services.ImportServiceConfig{
		Sessions:            persistence.NewSessionRepository(),
		Ledger:              persistence.NewLedgerRepository(),
		Accounts:            employees,
		Reference:           &referenceSource{reference: reference, employees: employees},
		Oracle:              o,
		Publisher:           app.EventPublisher(),
		Logger:              app.Logger(),
		MaxUploadBytes:      conf.Import.MaxUploadBytes,
		MaxRows:             conf.Import.MaxRows,
		SessionTTL:          conf.Import.SessionTTL,
		AutoAcceptThreshold: conf.Import.AutoAcceptThreshold,
		CommitWorkers:       conf.Import.CommitWorkers,
		PastGraceDays:       conf.Import.PastGraceDays,
	})
	app.RegisterServices(imports)
	app.RegisterControllers(controllers.NewImportController(app))
	handlers.RegisterWelcomeHandler(app, nil)
	return nil
}

func (m *Module) Name() string {
	return "onboarding"
}

// referenceSource spans the two directory services the validator needs.
type referenceSource struct {
	reference *directoryservices.ReferenceService
	employees *directoryservices.EmployeeService
}

func (r *referenceSource) Departments(ctx context.Context) ([]string, error) {
	return r.reference.Departments(ctx)
}

func (r *referenceSource) JobTitles(ctx context.Context) ([]string, error) {
	return r.reference.JobTitles(ctx)
}

func (r *referenceSource) FilterExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	return r.employees.FilterExistingEmails(ctx, emails)
}

package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
	"github.com/peopleforge/peopleforge/pkg/composables"
	"github.com/peopleforge/peopleforge/pkg/eventbus"
)

type EmployeeService struct {
	repo      employee.Repository
	publisher eventbus.EventBus
}

func NewEmployeeService(repo employee.Repository, publisher eventbus.EventBus) *EmployeeService {
	return &EmployeeService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (employee.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EmployeeService) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *EmployeeService) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *EmployeeService) FilterExistingEmails(ctx context.Context, emails []string) (map[string]bool, error) {
	return s.repo.FilterExistingEmails(ctx, emails)
}

// Create provisions one account. Each call runs in its own transaction so
// callers can provision rows independently.
func (s *EmployeeService) Create(ctx context.Context, data employee.Employee) (employee.Employee, error) {
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (employee.Employee, error) {
		return s.repo.Create(txCtx, data)
	})
	if err != nil {
		return employee.Employee{}, err
	}
	s.publisher.Publish(employee.NewCreatedEvent(created))
	return created, nil
}

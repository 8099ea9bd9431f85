package employee

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("employee not found")
	ErrEmailTaken = errors.New("email already in use")
)

type FindParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Employee, int64, error)
	// FilterExistingEmails returns the subset of emails that already belong
	// to active employees, lowercased.
	FilterExistingEmails(ctx context.Context, emails []string) (map[string]bool, error)
	Create(ctx context.Context, e Employee) (Employee, error)
}

package department

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("department not found")

type Department struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
}

func New(name string) Department {
	return Department{name: strings.TrimSpace(name)}
}

func Hydrate(id uuid.UUID, name string, createdAt time.Time) Department {
	return Department{id: id, name: name, createdAt: createdAt}
}

func (d Department) ID() uuid.UUID        { return d.id }
func (d Department) Name() string         { return d.name }
func (d Department) CreatedAt() time.Time { return d.createdAt }

type Repository interface {
	GetAll(ctx context.Context) ([]Department, error)
}

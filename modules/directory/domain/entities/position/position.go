package position

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Position is a known job title used for advisory matching during import.
type Position struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
}

func New(name string) Position {
	return Position{name: strings.TrimSpace(name)}
}

func Hydrate(id uuid.UUID, name string, createdAt time.Time) Position {
	return Position{id: id, name: name, createdAt: createdAt}
}

func (p Position) ID() uuid.UUID        { return p.id }
func (p Position) Name() string         { return p.name }
func (p Position) CreatedAt() time.Time { return p.createdAt }

type Repository interface {
	GetAll(ctx context.Context) ([]Position, error)
}

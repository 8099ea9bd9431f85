package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopleforge/peopleforge/modules/directory/domain/entities/department"
	"github.com/peopleforge/peopleforge/modules/directory/domain/entities/position"
	"github.com/peopleforge/peopleforge/pkg/composables"
)

type PgDepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{}
}

func (r *PgDepartmentRepository) GetAll(ctx context.Context) ([]department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []department.Department
	for rows.Next() {
		var (
			id        uuid.UUID
			name      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, department.Hydrate(id, name, createdAt))
	}
	return out, rows.Err()
}

type PgPositionRepository struct{}

func NewPositionRepository() position.Repository {
	return &PgPositionRepository{}
}

func (r *PgPositionRepository) GetAll(ctx context.Context) ([]position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, name, created_at FROM positions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []position.Position
	for rows.Next() {
		var (
			id        uuid.UUID
			name      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, position.Hydrate(id, name, createdAt))
	}
	return out, rows.Err()
}

package services

import (
	"context"

	"github.com/peopleforge/peopleforge/modules/directory/domain/entities/department"
	"github.com/peopleforge/peopleforge/modules/directory/domain/entities/position"
)

// ReferenceService exposes the read-only org reference data the import
// pipeline validates against. The pipeline never mutates reference data.
type ReferenceService struct {
	departments department.Repository
	positions   position.Repository
}

func NewReferenceService(departments department.Repository, positions position.Repository) *ReferenceService {
	return &ReferenceService{
		departments: departments,
		positions:   positions,
	}
}

func (s *ReferenceService) Departments(ctx context.Context) ([]string, error) {
	all, err := s.departments.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, d := range all {
		names = append(names, d.Name())
	}
	return names, nil
}

func (s *ReferenceService) JobTitles(ctx context.Context) ([]string, error) {
	all, err := s.positions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name())
	}
	return names, nil
}

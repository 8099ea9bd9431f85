package mappers

import (
	"time"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
)

type EmployeeResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	JobTitle   string    `json:"jobTitle"`
	Level      int       `json:"level"`
	StartDate  string    `json:"startDate,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func EmployeeToResponse(e employee.Employee) EmployeeResponse {
	startDate := ""
	if !e.StartDate().IsZero() {
		startDate = e.StartDate().Format("2006-01-02")
	}
	return EmployeeResponse{
		ID:         e.ID().String(),
		FirstName:  e.FirstName(),
		LastName:   e.LastName(),
		Email:      e.Email(),
		Department: e.Department(),
		JobTitle:   e.JobTitle(),
		Level:      e.Level(),
		StartDate:  startDate,
		Status:     string(e.Status()),
		CreatedAt:  e.CreatedAt(),
	}
}

func EmployeesToResponses(employees []employee.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, EmployeeToResponse(e))
	}
	return out
}

package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Employee struct {
	id         uuid.UUID
	firstName  string
	lastName   string
	email      string
	department string
	jobTitle   string
	level      int
	startDate  time.Time
	status     Status
	createdAt  time.Time
}

func New(firstName, lastName, email, department, jobTitle string, level int, startDate time.Time) Employee {
	return Employee{
		firstName:  strings.TrimSpace(firstName),
		lastName:   strings.TrimSpace(lastName),
		email:      strings.ToLower(strings.TrimSpace(email)),
		department: strings.TrimSpace(department),
		jobTitle:   strings.TrimSpace(jobTitle),
		level:      level,
		startDate:  startDate,
		status:     StatusActive,
	}
}

func Hydrate(
	id uuid.UUID,
	firstName string,
	lastName string,
	email string,
	department string,
	jobTitle string,
	level int,
	startDate time.Time,
	status Status,
	createdAt time.Time,
) Employee {
	return Employee{
		id:         id,
		firstName:  firstName,
		lastName:   lastName,
		email:      email,
		department: department,
		jobTitle:   jobTitle,
		level:      level,
		startDate:  startDate,
		status:     status,
		createdAt:  createdAt,
	}
}

func (e Employee) ID() uuid.UUID        { return e.id }
func (e Employee) FirstName() string    { return e.firstName }
func (e Employee) LastName() string     { return e.lastName }
func (e Employee) Email() string        { return e.email }
func (e Employee) Department() string   { return e.department }
func (e Employee) JobTitle() string     { return e.jobTitle }
func (e Employee) Level() int           { return e.level }
func (e Employee) StartDate() time.Time { return e.startDate }
func (e Employee) Status() Status       { return e.status }
func (e Employee) CreatedAt() time.Time { return e.createdAt }

func (e Employee) FullName() string {
	return strings.TrimSpace(e.firstName + " " + e.lastName)
}

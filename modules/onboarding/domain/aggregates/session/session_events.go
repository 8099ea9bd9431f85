package session

import (
	"github.com/google/uuid"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
)

// AccountProvisionedEvent fires once per account created during a confirm.
// Welcome notifications hang off it; delivery is fire-and-forget.
type AccountProvisionedEvent struct {
	SessionID uuid.UUID
	Row       int
	Result    employee.Employee
}

func NewAccountProvisionedEvent(sessionID uuid.UUID, row int, result employee.Employee) AccountProvisionedEvent {
	return AccountProvisionedEvent{
		SessionID: sessionID,
		Row:       row,
		Result:    result,
	}
}

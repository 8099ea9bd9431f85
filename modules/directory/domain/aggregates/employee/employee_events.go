package employee

type CreatedEvent struct {
	Result Employee
}

func NewCreatedEvent(result Employee) *CreatedEvent {
	return &CreatedEvent{Result: result}
}

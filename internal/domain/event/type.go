package event

// Type identifies the type of domain event
type Type string

const (
	TypeTicketOpened   Type = "ticket.opened"
	TypeTicketApproved Type = "ticket.approved"
	TypeTicketRejected Type = "ticket.rejected"
	TypeTicketClosed   Type = "ticket.closed"
)

// AllTypes returns every ticket lifecycle event type
func AllTypes() []Type {
	return []Type{TypeTicketOpened, TypeTicketApproved, TypeTicketRejected, TypeTicketClosed}
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeTicketOpened,
		TypeTicketApproved,
		TypeTicketRejected,
		TypeTicketClosed:
		return true
	default:
		return false
	}
}

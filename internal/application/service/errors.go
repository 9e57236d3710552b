package service

import (
	"errors"

	"github.com/garyjia/faction-bank/internal/domain/access"
)

var (
	// ErrForbidden is returned when the actor is not an approver
	ErrForbidden = access.ErrForbidden
	// ErrTicketNotFound is returned for actions on a workspace that is not a ticket
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrTicketClosed is returned for actions racing or following a close
	ErrTicketClosed = errors.New("ticket is closed")
	// ErrCategoryUnresolvable is returned when the tickets category cannot be found or created
	ErrCategoryUnresolvable = errors.New("tickets category unresolvable")
	// ErrDeliveryFailure marks a failed notification or transcript hand-off
	ErrDeliveryFailure = errors.New("delivery failed")
	// ErrWorkspaceTeardownFailure is returned when neither deletion nor locking succeeded
	ErrWorkspaceTeardownFailure = errors.New("workspace teardown failed")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

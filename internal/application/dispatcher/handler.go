package dispatcher

import (
	"context"

	"github.com/garyjia/faction-bank/internal/domain/event"
)

// Handler reacts to a ticket lifecycle event
type Handler func(ctx context.Context, evt *event.Event) error

// Subscription describes one registered handler
type Subscription struct {
	Name      string
	EventType event.Type
	handler   Handler
}

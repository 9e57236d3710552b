package service

import (
	"context"
	"fmt"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/event"
)

// MirrorService forwards one-line lifecycle notices to a secondary chat
type MirrorService struct {
	mirror port.Mirror
	logger Logger
}

// NewMirrorService creates a MirrorService
func NewMirrorService(mirror port.Mirror, logger Logger) *MirrorService {
	return &MirrorService{mirror: mirror, logger: logger}
}

// Subscribe attaches the mirror to every lifecycle event
func (m *MirrorService) Subscribe(d dispatcher.Dispatcher) {
	d.SubscribeAll("lark-mirror", m.Forward)
}

// Forward publishes a notice; failures are logged and swallowed
func (m *MirrorService) Forward(ctx context.Context, evt *event.Event) error {
	if err := m.mirror.Publish(ctx, MirrorText(evt)); err != nil {
		m.logger.Warn("Mirror delivery failed", "ticket_id", evt.TicketID, "event_type", evt.Type, "error", err)
	}
	return nil
}

// MirrorText renders a lifecycle event as a single line
func MirrorText(evt *event.Event) string {
	name := evt.GetPayloadString(event.KeyChannelName)
	if name == "" {
		name = evt.TicketID
	}

	switch evt.Type {
	case event.TypeTicketOpened:
		return fmt.Sprintf("[bank] %s opened by %s: %s, %s",
			name,
			evt.GetPayloadString(event.KeyRequesterID),
			entity.FormatAmount(evt.GetPayloadInt(event.KeyAmount)),
			entity.DeliveryCondition(evt.GetPayloadString(event.KeyCondition)).Label(),
		)
	case event.TypeTicketApproved:
		return fmt.Sprintf("[bank] %s approved by %s", name, evt.ActorID)
	case event.TypeTicketRejected:
		return fmt.Sprintf("[bank] %s rejected by %s", name, evt.ActorID)
	case event.TypeTicketClosed:
		return fmt.Sprintf("[bank] %s closed by %s (transcript: %s, teardown: %s)",
			name,
			evt.ActorID,
			evt.GetPayloadString(event.KeyDelivery),
			evt.GetPayloadString(event.KeyTeardown),
		)
	default:
		return fmt.Sprintf("[bank] %s %s", name, evt.Type)
	}
}

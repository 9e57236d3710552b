package event

import (
	"time"

	"github.com/google/uuid"
)

// Payload keys used by ticket events
const (
	KeyRequesterID = "requester_id"
	KeyAmount      = "amount"
	KeyCondition   = "condition"
	KeyComment     = "comment"
	KeyStatus      = "status"
	KeyChannelName = "channel_name"
	KeyDelivery    = "transcript_delivery"
	KeyTeardown    = "teardown"
)

// Event represents a domain event about one ticket
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	TicketID      string                 `json:"ticket_id"`
	GuildID       string                 `json:"guild_id"`
	ActorID       string                 `json:"actor_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a domain event with a fresh id, correlation id and timestamp
func NewEvent(eventType Type, ticketID, guildID, actorID string, payload map[string]interface{}) *Event {
	return NewEventWithCorrelation(eventType, ticketID, guildID, actorID, payload, uuid.NewString())
}

// NewEventWithCorrelation creates an event linked to an existing correlation chain
func NewEventWithCorrelation(eventType Type, ticketID, guildID, actorID string, payload map[string]interface{}, correlationID string) *Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		TicketID:      ticketID,
		GuildID:       guildID,
		ActorID:       actorID,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// WithPayload returns a copy of the event with one more payload entry
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an int64 value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

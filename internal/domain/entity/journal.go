package entity

import "time"

// JournalEntry is one append-only record of a ticket lifecycle event
type JournalEntry struct {
	ID          int64     `json:"id"`
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	TicketID    string    `json:"ticket_id"`
	GuildID     string    `json:"guild_id"`
	RequesterID string    `json:"requester_id"`
	ActorID     string    `json:"actor_id"`
	Amount      int64     `json:"amount"`
	Condition   string    `json:"condition"`
	Comment     string    `json:"comment"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

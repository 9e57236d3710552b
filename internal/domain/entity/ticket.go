package entity

import "time"

// Ticket is the snapshot of a per-request workspace
type Ticket struct {
	ID               string          `json:"id"` // workspace (channel) id
	GuildID          string          `json:"guild_id"`
	Name             string          `json:"name"`
	RequesterID      string          `json:"requester_id"`
	Request          *FundingRequest `json:"request,omitempty"` // nil for adopted tickets
	SummaryMessageID string          `json:"summary_message_id"`
	Status           string          `json:"status"`
	Adopted          bool            `json:"adopted"`
	CreatedAt        time.Time       `json:"created_at"`
}

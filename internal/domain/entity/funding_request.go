package entity

import (
	"fmt"
	"time"
)

// FundingRequest is the immutable triple captured by the intake flow
type FundingRequest struct {
	GuildID     string            `json:"guild_id"`
	Requester   Member            `json:"requester"`
	Amount      int64             `json:"amount"`
	Condition   DeliveryCondition `json:"condition"`
	Comment     string            `json:"comment,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// NewFundingRequest validates the captured fields and bounds the comment
func NewFundingRequest(guildID string, requester Member, amount int64, condition DeliveryCondition, comment string) (*FundingRequest, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild id is required")
	}
	if requester.ID == "" {
		return nil, fmt.Errorf("requester id is required")
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if !condition.IsValid() {
		return nil, fmt.Errorf("unknown delivery condition %q", condition)
	}
	return &FundingRequest{
		GuildID:     guildID,
		Requester:   requester,
		Amount:      amount,
		Condition:   condition,
		Comment:     TruncateRunes(comment, MaxCommentLength),
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// TruncateRunes cuts s to at most n runes
func TruncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

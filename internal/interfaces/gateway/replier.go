package gateway

import (
	"context"

	"github.com/garyjia/faction-bank/internal/application/port"
)

// Reply is a message sent back to the actor
type Reply struct {
	Content string
	Private bool
	Select  *port.SelectMenu
	Files   []port.FileAttachment
}

// TextInput is one field of a modal form
type TextInput struct {
	CustomID    string
	Label       string
	Placeholder string
	Paragraph   bool
	Required    bool
	MaxLength   int
}

// Modal is a pop-up form
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

// Replier answers one interaction. The first call acknowledges it; later
// Reply calls become follow-ups.
type Replier interface {
	Reply(ctx context.Context, r Reply) error
	// Update replaces the message the control sits on and removes its controls
	Update(ctx context.Context, content string) error
	// Defer acknowledges without visible output so slow work can follow
	Defer(ctx context.Context) error
	OpenModal(ctx context.Context, m Modal) error
}

// RequestModal is the amount/comment form of a prompt session
func RequestModal(sessionID string) Modal {
	return Modal{
		CustomID: FormID(sessionID),
		Title:    "Faction Bank Request",
		Inputs: []TextInput{
			{
				CustomID:    AmountFieldID,
				Label:       "Amount",
				Placeholder: "e.g., 12m or 10k or 1,200,000",
				Required:    true,
				MaxLength:   30,
			},
			{
				CustomID:    CommentFieldID,
				Label:       "Comment (optional)",
				Placeholder: "Extra details if needed",
				Paragraph:   true,
				MaxLength:   1000,
			},
		},
	}
}

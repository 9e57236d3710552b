package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// Summary display colours
const (
	ColorPending  = 0x5865F2
	ColorApproved = 0x57F287
	ColorRejected = 0xED4245
)

const summaryTitle = "💸 Faction Bank Request"

// BuildSummaryEmbed composes the summary display of a new ticket
func BuildSummaryEmbed(ticketID string, req *entity.FundingRequest) port.Embed {
	fields := []port.EmbedField{
		{Name: "Member", Value: fmt.Sprintf("%s (%s)", req.Requester.Mention(), req.Requester.ID)},
		{Name: "Amount", Value: entity.FormatAmount(req.Amount), Inline: true},
		{Name: "When to send", Value: req.Condition.Label(), Inline: true},
	}
	if req.Comment != "" {
		fields = append(fields, port.EmbedField{
			Name:  "Comment",
			Value: entity.TruncateRunes(req.Comment, entity.MaxCommentLength),
		})
	}

	ts := req.SubmittedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return port.Embed{
		Title:     summaryTitle,
		Color:     ColorPending,
		Fields:    fields,
		Footer:    "Ticket ID: " + ticketID,
		Timestamp: ts,
	}
}

// withStatus returns a copy of the embed recoloured with one more Status field
func withStatus(embed port.Embed, color int, status string) port.Embed {
	out := embed
	out.Color = color
	out.Fields = make([]port.EmbedField, 0, len(embed.Fields)+1)
	out.Fields = append(out.Fields, embed.Fields...)
	out.Fields = append(out.Fields, port.EmbedField{Name: "Status", Value: status, Inline: true})
	return out
}

// approverAddressees renders the role mentions that address a new ticket
func approverAddressees(roleIDs []string) string {
	mentions := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		mentions = append(mentions, entity.RoleMention(id))
	}
	return strings.Join(mentions, ", ")
}

// approverDirectMessage is the fan-out notice sent to each approver
func approverDirectMessage(req *entity.FundingRequest, channelID string) string {
	return fmt.Sprintf("💸 New bank request from %s\nAmount: **%s**\nWhen: **%s**\nTicket channel: %s",
		req.Requester.Mention(),
		entity.FormatAmount(req.Amount),
		req.Condition.Label(),
		entity.ChannelMention(channelID),
	)
}

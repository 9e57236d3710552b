package intake

import (
	"context"
	"strings"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

const panelColor = 0x5865F2

// Panel posts the durable entry control
type Panel struct {
	policy   *access.Policy
	platform port.MessageGateway
	button   port.Button
}

// NewPanel creates a Panel whose button opens the entry flow
func NewPanel(policy *access.Policy, platform port.MessageGateway, button port.Button) *Panel {
	return &Panel{policy: policy, platform: platform, button: button}
}

// Message composes the panel
func (p *Panel) Message() port.OutgoingMessage {
	labels := make([]string, 0, 4)
	for _, c := range entity.AllDeliveryConditions() {
		labels = append(labels, c.Label())
	}
	return port.OutgoingMessage{
		Embeds: []port.Embed{{
			Title: "💸 Faction Bank Requests",
			Description: "Click **Open Bank Ticket** to privately request money from the faction bank.\n\n" +
				"**Amount** supports 10k / 12m / 1.5b or comma'd numbers.\n" +
				"**Comment** is optional. After submitting, you **must choose one** of: " +
				strings.Join(labels, ", ") + ".",
			Color: panelColor,
		}},
		Buttons: []port.Button{p.button},
	}
}

// Post places the panel in a channel
func (p *Panel) Post(ctx context.Context, actor entity.Member, channelID string) error {
	if !p.policy.IsApprover(actor) {
		return access.ErrForbidden
	}
	_, err := p.platform.Post(ctx, channelID, p.Message())
	return err
}

// ConditionMenu builds the phase-two choice for a session
func ConditionMenu(customID string) port.SelectMenu {
	options := make([]port.SelectOption, 0, 4)
	for _, c := range entity.AllDeliveryConditions() {
		options = append(options, port.SelectOption{
			Label:       c.Label(),
			Value:       c.String(),
			Description: c.Description(),
		})
	}
	return port.SelectMenu{
		CustomID:    customID,
		Placeholder: "Choose one option…",
		Options:     options,
	}
}

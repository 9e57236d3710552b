package gateway

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/garyjia/faction-bank/internal/infrastructure/external/discord"
)

type ackState int

const (
	ackNone ackState = iota
	ackResponded
	ackDeferredUpdate  // component acknowledged, its message untouched
	ackDeferredMessage // "thinking" placeholder awaiting its first reply
)

// interactionReplier answers one interaction over the REST interaction endpoints
type interactionReplier struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu    sync.Mutex
	state ackState
}

func newInteractionReplier(session *discordgo.Session, i *discordgo.Interaction) *interactionReplier {
	return &interactionReplier{session: session, interaction: i}
}

func (r *interactionReplier) Reply(ctx context.Context, reply Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var flags discordgo.MessageFlags
	if reply.Private {
		flags = discordgo.MessageFlagsEphemeral
	}
	components := discord.Components(nil, reply.Select)

	switch r.state {
	case ackNone:
		err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    reply.Content,
				Components: components,
				Files:      discord.Files(reply.Files),
				Flags:      flags,
			},
		}, discordgo.WithContext(ctx))
		if err == nil {
			r.state = ackResponded
		}
		return err

	case ackDeferredMessage:
		content := reply.Content
		_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
			Content:    &content,
			Components: &components,
			Files:      discord.Files(reply.Files),
		}, discordgo.WithContext(ctx))
		if err == nil {
			r.state = ackResponded
		}
		return err
	}

	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content:    reply.Content,
		Components: components,
		Files:      discord.Files(reply.Files),
		Flags:      flags,
	}, discordgo.WithContext(ctx))
	return err
}

func (r *interactionReplier) Update(ctx context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	empty := []discordgo.MessageComponent{}
	if r.state == ackNone {
		err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    content,
				Components: empty,
			},
		}, discordgo.WithContext(ctx))
		if err == nil {
			r.state = ackResponded
		}
		return err
	}

	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &empty,
	}, discordgo.WithContext(ctx))
	return err
}

func (r *interactionReplier) Defer(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != ackNone {
		return nil
	}

	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
	next := ackDeferredUpdate
	if r.interaction.Type != discordgo.InteractionMessageComponent {
		resp = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
		}
		next = ackDeferredMessage
	}

	if err := r.session.InteractionRespond(r.interaction, resp, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	r.state = next
	return nil
}

func (r *interactionReplier) OpenModal(ctx context.Context, m Modal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]discordgo.MessageComponent, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		style := discordgo.TextInputShort
		if in.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    in.CustomID,
				Label:       in.Label,
				Style:       style,
				Placeholder: in.Placeholder,
				Required:    in.Required,
				MaxLength:   in.MaxLength,
			},
		}})
	}

	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   m.CustomID,
			Title:      m.Title,
			Components: rows,
		},
	}, discordgo.WithContext(ctx))
	if err == nil {
		r.state = ackResponded
	}
	return err
}

var _ Replier = (*interactionReplier)(nil)

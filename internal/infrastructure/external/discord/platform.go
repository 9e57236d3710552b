package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

const (
	historyPageSize = 100
	membersPageSize = 1000
)

// Platform implements port.ChatPlatform over a discordgo session
type Platform struct {
	session *discordgo.Session
	logger  *zap.Logger
}

// NewPlatform wraps an opened or soon-to-be-opened session
func NewPlatform(session *discordgo.Session, logger *zap.Logger) *Platform {
	return &Platform{session: session, logger: logger}
}

var _ port.ChatPlatform = (*Platform)(nil)

// SelfID returns the bot's own user id once the gateway is ready
func (p *Platform) SelfID() string {
	if p.session.State == nil || p.session.State.User == nil {
		return ""
	}
	return p.session.State.User.ID
}

func (p *Platform) Channel(ctx context.Context, channelID string) (*port.Channel, error) {
	ch, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	return fromChannel(ch), nil
}

func (p *Platform) GuildChannels(ctx context.Context, guildID string) ([]port.Channel, error) {
	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	out := make([]port.Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, *fromChannel(ch))
	}
	return out, nil
}

func (p *Platform) Roles(ctx context.Context, guildID string) ([]port.Role, error) {
	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	out := make([]port.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, port.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// RoleMembers pages through the guild member list and keeps holders of roleID
func (p *Platform) RoleMembers(ctx context.Context, guildID, roleID string) ([]entity.Member, error) {
	var (
		out   []entity.Member
		after string
	)
	for {
		page, err := p.session.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members: %w", err)
		}
		for _, m := range page {
			if m.User == nil || m.User.Bot {
				continue
			}
			for _, r := range m.Roles {
				if r == roleID {
					out = append(out, FromMember(m))
					break
				}
			}
		}
		if len(page) < membersPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (p *Platform) CreateCategory(ctx context.Context, guildID, name string) (*port.Channel, error) {
	ch, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	p.logger.Info("Category created", zap.String("category_id", ch.ID), zap.String("name", name))
	return fromChannel(ch), nil
}

func (p *Platform) CreateTextChannel(ctx context.Context, guildID string, spec port.ChannelSpec) (*port.Channel, error) {
	ch, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             spec.ParentID,
		PermissionOverwrites: toOverwrites(spec.Overwrites),
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(spec.Reason))
	if err != nil {
		return nil, fmt.Errorf("failed to create channel %q: %w", spec.Name, err)
	}
	return fromChannel(ch), nil
}

func (p *Platform) EditChannel(ctx context.Context, channelID string, edit port.ChannelEdit) (*port.Channel, error) {
	ch, err := p.session.ChannelEdit(channelID, &discordgo.ChannelEdit{
		Name:                 edit.Name,
		PermissionOverwrites: toOverwrites(edit.Overwrites),
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(edit.Reason))
	if err != nil {
		return nil, fmt.Errorf("failed to edit channel %s: %w", channelID, err)
	}
	return fromChannel(ch), nil
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID, reason string) error {
	if _, err := p.session.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)); err != nil {
		return fmt.Errorf("failed to delete channel %s: %w", channelID, err)
	}
	return nil
}

func (p *Platform) Post(ctx context.Context, channelID string, msg port.OutgoingMessage) (*port.Message, error) {
	sent, err := p.session.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to post message to %s: %w", channelID, err)
	}
	out := fromMessage(sent)
	return &out, nil
}

// Edit replaces content and embeds while leaving components untouched
func (p *Platform) Edit(ctx context.Context, channelID, messageID string, edit port.MessageEdit) error {
	req := discordgo.NewMessageEdit(channelID, messageID).
		SetContent(edit.Content).
		SetEmbeds(toEmbeds(edit.Embeds))
	if _, err := p.session.ChannelMessageEditComplex(req, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, err)
	}
	return nil
}

// History pages backwards from the newest message and returns oldest first
func (p *Platform) History(ctx context.Context, channelID string) ([]port.Message, error) {
	var (
		newestFirst []*discordgo.Message
		before      string
	)
	for {
		page, err := p.session.ChannelMessages(channelID, historyPageSize, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to read history of %s: %w", channelID, err)
		}
		newestFirst = append(newestFirst, page...)
		if len(page) < historyPageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	out := make([]port.Message, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		out = append(out, fromMessage(newestFirst[i]))
	}
	return out, nil
}

func (p *Platform) SendDirect(ctx context.Context, userID string, msg port.OutgoingMessage) error {
	dm, err := p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	if _, err := p.session.ChannelMessageSendComplex(dm.ID, toMessageSend(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM to %s: %w", userID, err)
	}
	return nil
}

func toMessageSend(msg port.OutgoingMessage) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content:         msg.Content,
		Embeds:          toEmbeds(msg.Embeds),
		Components:      Components(msg.Buttons, msg.Select),
		AllowedMentions: toAllowedMentions(msg.MentionRoleIDs),
	}
	if len(msg.Files) > 0 {
		send.Files = Files(msg.Files)
	}
	return send
}

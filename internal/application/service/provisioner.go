package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/event"
)

// ProvisionerConfig is fixed at startup
type ProvisionerConfig struct {
	ChannelPrefix   string
	ApproverRoleIDs []string
	// Controls is the approve/reject/close surface attached to every summary
	Controls []port.Button
}

// Provisioner creates ticket workspaces
type Provisioner struct {
	cfg        ProvisionerConfig
	platform   port.ChatPlatform
	categories *CategoryResolver
	registry   *TicketRegistry
	notifier   *ApproverNotifier
	events     dispatcher.Dispatcher
	logger     Logger
}

// NewProvisioner creates a Provisioner
func NewProvisioner(
	cfg ProvisionerConfig,
	platform port.ChatPlatform,
	categories *CategoryResolver,
	registry *TicketRegistry,
	notifier *ApproverNotifier,
	events dispatcher.Dispatcher,
	logger Logger,
) *Provisioner {
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = entity.DefaultChannelPrefix
	}
	cfg.ApproverRoleIDs = append([]string(nil), cfg.ApproverRoleIDs...)
	cfg.Controls = append([]port.Button(nil), cfg.Controls...)
	return &Provisioner{
		cfg:        cfg,
		platform:   platform,
		categories: categories,
		registry:   registry,
		notifier:   notifier,
		events:     events,
		logger:     logger,
	}
}

// Provision opens a ticket workspace for a funding request
func (p *Provisioner) Provision(ctx context.Context, req *entity.FundingRequest) (*entity.Ticket, error) {
	guildID := req.GuildID
	categoryID, err := p.categories.Resolve(ctx, guildID)
	if err != nil {
		p.logger.Error("Failed to resolve tickets category", "guild_id", guildID, "error", err)
		return nil, err
	}

	roles := p.existingRoles(ctx, guildID)
	spec := port.ChannelSpec{
		Name:       ChannelName(p.cfg.ChannelPrefix, req.Requester),
		ParentID:   categoryID,
		Reason:     "Bank request ticket",
		Overwrites: WorkspaceOverwrites(guildID, req.Requester.ID, p.platform.SelfID(), roles),
	}

	channel, err := p.platform.CreateTextChannel(ctx, guildID, spec)
	if err != nil {
		p.categories.Forget(guildID)
		p.logger.Error("Failed to create ticket channel", "guild_id", guildID, "requester_id", req.Requester.ID, "error", err)
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}

	summary := BuildSummaryEmbed(channel.ID, req)
	msg, err := p.platform.Post(ctx, channel.ID, port.OutgoingMessage{
		Content:        approverAddressees(roles),
		Embeds:         []port.Embed{summary},
		Buttons:        p.cfg.Controls,
		MentionRoleIDs: roles,
	})
	if err != nil {
		if derr := p.platform.DeleteChannel(ctx, channel.ID, "Summary could not be posted"); derr != nil {
			p.logger.Error("Failed to remove half-built ticket", "ticket_id", channel.ID, "error", derr)
		}
		return nil, fmt.Errorf("post ticket summary: %w", err)
	}

	ticket := entity.Ticket{
		ID:               channel.ID,
		GuildID:          guildID,
		Name:             channel.Name,
		RequesterID:      req.Requester.ID,
		Request:          req,
		SummaryMessageID: msg.ID,
		Status:           entity.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	p.registry.Register(ticket, &summary)

	p.logger.Info("Ticket opened",
		"ticket_id", ticket.ID,
		"guild_id", ticket.GuildID,
		"requester_id", ticket.RequesterID,
		"amount", req.Amount,
		"condition", req.Condition.String(),
	)

	if p.notifier != nil {
		p.notifier.Notify(guildID, roles, approverDirectMessage(req, channel.ID))
	}
	p.events.DispatchAsync(event.NewEvent(event.TypeTicketOpened, ticket.ID, ticket.GuildID, req.Requester.ID, map[string]interface{}{
		event.KeyRequesterID: req.Requester.ID,
		event.KeyAmount:      req.Amount,
		event.KeyCondition:   req.Condition.String(),
		event.KeyComment:     req.Comment,
		event.KeyChannelName: ticket.Name,
		event.KeyStatus:      ticket.Status,
	}))

	return &ticket, nil
}

// existingRoles filters the configured approver roles down to those the guild still has
func (p *Provisioner) existingRoles(ctx context.Context, guildID string) []string {
	if len(p.cfg.ApproverRoleIDs) == 0 {
		return nil
	}
	roles, err := p.platform.Roles(ctx, guildID)
	if err != nil {
		p.logger.Warn("Failed to list guild roles, using configured approver roles", "guild_id", guildID, "error", err)
		return append([]string(nil), p.cfg.ApproverRoleIDs...)
	}

	known := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		known[r.ID] = struct{}{}
	}
	out := make([]string, 0, len(p.cfg.ApproverRoleIDs))
	for _, id := range p.cfg.ApproverRoleIDs {
		if _, ok := known[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ChannelName derives the workspace name from the requester
func ChannelName(prefix string, requester entity.Member) string {
	safe := strings.ReplaceAll(strings.ToLower(requester.Username), " ", "-")
	return entity.TruncateRunes(fmt.Sprintf("%s-%s-%s", prefix, safe, requester.ID), entity.MaxChannelNameLength)
}

// WorkspaceOverwrites hides the workspace from everyone except the requester,
// the bot and the approver roles. The guild id doubles as the @everyone role id.
func WorkspaceOverwrites(guildID, requesterID, botID string, approverRoleIDs []string) []port.PermissionOverwrite {
	out := []port.PermissionOverwrite{
		{TargetID: guildID, Target: port.TargetRole, Deny: port.PermView},
		{
			TargetID: requesterID,
			Target:   port.TargetMember,
			Allow:    port.PermView | port.PermSend | port.PermAttach | port.PermReadHistory,
			Deny:     port.PermAddReactions,
		},
		{
			TargetID: botID,
			Target:   port.TargetMember,
			Allow:    port.PermView | port.PermSend | port.PermManageChannel | port.PermReadHistory,
		},
	}
	for _, roleID := range approverRoleIDs {
		out = append(out, port.PermissionOverwrite{
			TargetID: roleID,
			Target:   port.TargetRole,
			Allow:    port.PermView | port.PermSend | port.PermReadHistory | port.PermManageMessages | port.PermAttach,
		})
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/event"
	"github.com/garyjia/faction-bank/internal/domain/workflow"
)

// ApprovedNotice is posted into the workspace after an approval
const ApprovedNotice = "Request approved. Send funds, then hit **Close** when done."

// ActionRequest identifies the ticket and actor of an approver action
type ActionRequest struct {
	TicketID string
	Actor    entity.Member
	// MessageID and Summary describe the message the control was pressed on.
	// They are only used to adopt a ticket this process does not know.
	MessageID string
	Summary   *port.Embed
}

// ApprovalController drives the ticket lifecycle
type ApprovalController struct {
	policy     *access.Policy
	platform   port.ChatPlatform
	registry   *TicketRegistry
	categories *CategoryResolver
	archiver   *TranscriptArchiver
	events     dispatcher.Dispatcher
	logger     Logger
}

// NewApprovalController creates an ApprovalController
func NewApprovalController(
	policy *access.Policy,
	platform port.ChatPlatform,
	registry *TicketRegistry,
	categories *CategoryResolver,
	archiver *TranscriptArchiver,
	events dispatcher.Dispatcher,
	logger Logger,
) *ApprovalController {
	return &ApprovalController{
		policy:     policy,
		platform:   platform,
		registry:   registry,
		categories: categories,
		archiver:   archiver,
		events:     events,
		logger:     logger,
	}
}

// Approve marks the ticket approved and prompts for payout
func (c *ApprovalController) Approve(ctx context.Context, req ActionRequest) (*entity.Ticket, error) {
	return c.decide(ctx, req, workflow.TriggerApprove)
}

// Reject marks the ticket rejected; the workspace stays open
func (c *ApprovalController) Reject(ctx context.Context, req ActionRequest) (*entity.Ticket, error) {
	return c.decide(ctx, req, workflow.TriggerReject)
}

func (c *ApprovalController) decide(ctx context.Context, req ActionRequest, trigger workflow.Trigger) (*entity.Ticket, error) {
	tt, err := c.acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	defer tt.mu.Unlock()

	if !tt.machine.CanFire(trigger) {
		return nil, fmt.Errorf("%s ticket %s from %s: %w", trigger, tt.ticket.ID, tt.machine.State(), workflow.ErrInvalidTransition)
	}
	tr, err := tt.machine.Fire(ctx, trigger)
	if err != nil {
		return nil, fmt.Errorf("%s ticket %s: %w", trigger, tt.ticket.ID, err)
	}
	tt.ticket.Status = string(tr.To)

	color, status, evtType := ColorApproved, "✅ Approved by "+req.Actor.Mention(), event.TypeTicketApproved
	if trigger == workflow.TriggerReject {
		color, status, evtType = ColorRejected, "❌ Rejected by "+req.Actor.Mention(), event.TypeTicketRejected
	}

	if tt.summary != nil && tt.ticket.SummaryMessageID != "" {
		updated := withStatus(*tt.summary, color, status)
		if err := c.platform.Edit(ctx, tt.ticket.ID, tt.ticket.SummaryMessageID, port.MessageEdit{Embeds: []port.Embed{updated}}); err != nil {
			c.logger.Error("Failed to update ticket summary", "ticket_id", tt.ticket.ID, "actor_id", req.Actor.ID, "error", err)
		} else {
			tt.summary = &updated
		}
	}

	if trigger == workflow.TriggerApprove {
		if _, err := c.platform.Post(ctx, tt.ticket.ID, port.OutgoingMessage{Content: ApprovedNotice}); err != nil {
			c.logger.Error("Failed to post approval notice", "ticket_id", tt.ticket.ID, "error", err)
		}
	}

	c.logger.Info("Ticket transitioned",
		"ticket_id", tt.ticket.ID,
		"guild_id", tt.ticket.GuildID,
		"actor_id", req.Actor.ID,
		"from", tr.From,
		"to", tr.To,
	)
	c.publish(evtType, tt.ticket, req.Actor.ID, nil)

	snapshot := tt.ticket
	return &snapshot, nil
}

// Close archives and tears down the ticket. The ticket leaves the registry
// before the lock is released, so later actions get ErrTicketClosed.
func (c *ApprovalController) Close(ctx context.Context, req ActionRequest) (CloseOutcome, error) {
	tt, err := c.acquire(ctx, req)
	if err != nil {
		return CloseOutcome{}, err
	}
	defer tt.mu.Unlock()

	if !tt.machine.CanFire(workflow.TriggerClose) {
		return CloseOutcome{}, fmt.Errorf("close ticket %s from %s: %w", tt.ticket.ID, tt.machine.State(), workflow.ErrInvalidTransition)
	}
	tr, err := tt.machine.Fire(ctx, workflow.TriggerClose)
	if err != nil {
		return CloseOutcome{}, fmt.Errorf("close ticket %s: %w", tt.ticket.ID, err)
	}
	tt.ticket.Status = string(tr.To)
	tt.closed = true
	c.registry.Remove(tt.ticket.ID)

	outcome, aerr := c.archiver.Archive(ctx, tt.ticket, req.Actor)
	if aerr != nil {
		c.logger.Error("Ticket closed but workspace remains writable", "ticket_id", tt.ticket.ID, "actor_id", req.Actor.ID, "error", aerr)
	}

	c.logger.Info("Ticket closed",
		"ticket_id", tt.ticket.ID,
		"guild_id", tt.ticket.GuildID,
		"actor_id", req.Actor.ID,
		"transcript", outcome.Delivery,
		"teardown", outcome.Teardown,
	)
	c.publish(event.TypeTicketClosed, tt.ticket, req.Actor.ID, map[string]interface{}{
		event.KeyDelivery: string(outcome.Delivery),
		event.KeyTeardown: string(outcome.Teardown),
	})
	return outcome, nil
}

// Authorize confirms the actor may act on an open ticket without changing it
func (c *ApprovalController) Authorize(ctx context.Context, req ActionRequest) error {
	tt, err := c.acquire(ctx, req)
	if err != nil {
		return err
	}
	tt.mu.Unlock()
	return nil
}

// acquire returns the ticket locked once the actor is authorized against it.
// The caller must unlock it.
func (c *ApprovalController) acquire(ctx context.Context, req ActionRequest) (*trackedTicket, error) {
	tt, ok, closed := c.registry.find(req.TicketID)
	if closed {
		return nil, ErrTicketClosed
	}
	if !ok {
		if !c.policy.IsApprover(req.Actor) {
			return nil, c.refuse(req)
		}
		adopted, err := c.adopt(ctx, req)
		if err != nil {
			return nil, err
		}
		tt = adopted
	}

	tt.mu.Lock()
	if tt.closed {
		tt.mu.Unlock()
		return nil, ErrTicketClosed
	}
	if !c.policy.IsApprover(req.Actor) {
		tt.mu.Unlock()
		return nil, c.refuse(req)
	}
	return tt, nil
}

func (c *ApprovalController) refuse(req ActionRequest) error {
	c.logger.Info("Rejected action by non-approver", "ticket_id", req.TicketID, "actor_id", req.Actor.ID)
	return ErrForbidden
}

// adopt registers an existing workspace under the tickets category, such as one
// opened before a restart
func (c *ApprovalController) adopt(ctx context.Context, req ActionRequest) (*trackedTicket, error) {
	ch, err := c.platform.Channel(ctx, req.TicketID)
	if err != nil || ch == nil || ch.Kind != port.ChannelKindText {
		return nil, ErrTicketNotFound
	}
	categoryID, err := c.categories.Lookup(ctx, ch.GuildID)
	if err != nil || categoryID == "" || ch.ParentID != categoryID {
		return nil, ErrTicketNotFound
	}

	status := entity.StatusPending
	if strings.HasPrefix(ch.Name, entity.ClosedChannelPrefix) {
		status = entity.StatusClosed
	}

	ticket := entity.Ticket{
		ID:               ch.ID,
		GuildID:          ch.GuildID,
		Name:             ch.Name,
		RequesterID:      requesterFromOverwrites(ch.Overwrites, c.platform.SelfID()),
		SummaryMessageID: req.MessageID,
		Status:           status,
		Adopted:          true,
		CreatedAt:        time.Now().UTC(),
	}
	var summary *port.Embed
	if req.Summary != nil {
		s := *req.Summary
		summary = &s
	}

	c.logger.Info("Adopted existing ticket workspace", "ticket_id", ticket.ID, "status", status, "actor_id", req.Actor.ID)
	return c.registry.track(ticket, summary), nil
}

func requesterFromOverwrites(overwrites []port.PermissionOverwrite, botID string) string {
	for _, ow := range overwrites {
		if ow.Target == port.TargetMember && ow.TargetID != botID {
			return ow.TargetID
		}
	}
	return ""
}

func (c *ApprovalController) publish(t event.Type, ticket entity.Ticket, actorID string, extra map[string]interface{}) {
	payload := map[string]interface{}{
		event.KeyRequesterID: ticket.RequesterID,
		event.KeyStatus:      ticket.Status,
		event.KeyChannelName: ticket.Name,
	}
	if ticket.Request != nil {
		payload[event.KeyAmount] = ticket.Request.Amount
		payload[event.KeyCondition] = ticket.Request.Condition.String()
	}
	for k, v := range extra {
		payload[k] = v
	}
	c.events.DispatchAsync(event.NewEvent(t, ticket.ID, ticket.GuildID, actorID, payload))
}

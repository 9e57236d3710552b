package gateway

import (
	"context"
	"fmt"

	"github.com/garyjia/faction-bank/internal/application/intake"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/application/service"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// EntryFlow is the two-phase request capture
type EntryFlow interface {
	Begin(actor entity.Member) string
	SubmitForm(ctx context.Context, sessionID string, actor entity.Member, amountText, comment string) (intake.Session, error)
	SelectCondition(ctx context.Context, sessionID, guildID string, actor entity.Member, value string) (*entity.Ticket, error)
}

// PanelPoster places the entry panel
type PanelPoster interface {
	Post(ctx context.Context, actor entity.Member, channelID string) error
}

// TicketController drives approver actions
type TicketController interface {
	Authorize(ctx context.Context, req service.ActionRequest) error
	Approve(ctx context.Context, req service.ActionRequest) (*entity.Ticket, error)
	Reject(ctx context.Context, req service.ActionRequest) (*entity.Ticket, error)
	Close(ctx context.Context, req service.ActionRequest) (service.CloseOutcome, error)
}

// LedgerSource renders the ticket journal
type LedgerSource interface {
	Export(ctx context.Context, actor entity.Member, limit int) (*service.LedgerFile, error)
}

// CommandSyncer re-registers slash commands in a guild
type CommandSyncer interface {
	Sync(ctx context.Context, guildID string) error
}

// Handlers holds the collaborators of every action handler
type Handlers struct {
	Policy     *access.Policy
	Flow       EntryFlow
	Panel      PanelPoster
	Controller TicketController
	Ledger     LedgerSource
	Commands   CommandSyncer
}

// Register fills the router's handler table
func (h *Handlers) Register(rt *Router) {
	rt.On(ActionOpenPanel, h.openForm)
	rt.On(ActionSubmitForm, h.submitForm)
	rt.On(ActionSelectCondition, h.selectCondition)
	rt.On(ActionApprove, h.approve)
	rt.On(ActionReject, h.reject)
	rt.On(ActionClose, h.close)
	rt.On(ActionPostPanel, h.postPanel)
	rt.On(ActionPing, h.ping)
	rt.On(ActionSync, h.sync)
	if h.Ledger != nil {
		rt.On(ActionExportLedger, h.exportLedger)
	}
}

func (h *Handlers) openForm(ctx context.Context, a Action, r Replier) error {
	if !a.InGuild() {
		return ErrNotInGuild
	}
	return r.OpenModal(ctx, RequestModal(h.Flow.Begin(a.Actor)))
}

func (h *Handlers) submitForm(ctx context.Context, a Action, r Replier) error {
	if !a.InGuild() {
		return ErrNotInGuild
	}
	sess, err := h.Flow.SubmitForm(ctx, a.SessionID, a.Actor, a.Amount, a.Comment)
	if err != nil {
		return err
	}
	menu := intake.ConditionMenu(ConditionID(sess.ID))
	return r.Reply(ctx, Reply{Content: msgChooseWhen, Private: true, Select: &menu})
}

func (h *Handlers) selectCondition(ctx context.Context, a Action, r Replier) error {
	if !a.InGuild() {
		return ErrNotInGuild
	}
	if len(a.Values) != 1 {
		return entity.ErrUnknownCondition
	}
	if err := r.Defer(ctx); err != nil {
		return err
	}

	ticket, err := h.Flow.SelectCondition(ctx, a.SessionID, a.GuildID, a.Actor, a.Values[0])
	if err != nil {
		return err
	}
	return r.Update(ctx, fmt.Sprintf("Option selected: **%s**, ticket created: %s",
		ticket.Request.Condition.Label(), entity.ChannelMention(ticket.ID)))
}

func (h *Handlers) approve(ctx context.Context, a Action, r Replier) error {
	if err := r.Defer(ctx); err != nil {
		return err
	}
	_, err := h.Controller.Approve(ctx, actionRequest(a))
	return err
}

func (h *Handlers) reject(ctx context.Context, a Action, r Replier) error {
	if err := r.Defer(ctx); err != nil {
		return err
	}
	_, err := h.Controller.Reject(ctx, actionRequest(a))
	return err
}

// close answers before the slow archive because the channel may be gone afterwards
func (h *Handlers) close(ctx context.Context, a Action, r Replier) error {
	if !a.InGuild() {
		return ErrNotInGuild
	}
	if !h.Policy.IsApprover(a.Actor) {
		return service.ErrForbidden
	}
	if err := h.Controller.Authorize(ctx, actionRequest(a)); err != nil {
		return err
	}
	if err := r.Reply(ctx, Reply{Content: msgClosing, Private: true}); err != nil {
		return err
	}
	_, err := h.Controller.Close(ctx, actionRequest(a))
	return err
}

func (h *Handlers) postPanel(ctx context.Context, a Action, r Replier) error {
	if err := h.Panel.Post(ctx, a.Actor, a.ChannelID); err != nil {
		return err
	}
	return r.Reply(ctx, Reply{Content: msgPanelPosted, Private: true})
}

func (h *Handlers) ping(ctx context.Context, a Action, r Replier) error {
	return r.Reply(ctx, Reply{Content: msgPong, Private: true})
}

func (h *Handlers) sync(ctx context.Context, a Action, r Replier) error {
	if !a.InGuild() {
		return ErrNotInGuild
	}
	if !h.Policy.IsApprover(a.Actor) {
		return service.ErrForbidden
	}
	if err := h.Commands.Sync(ctx, a.GuildID); err != nil {
		return r.Reply(ctx, Reply{Content: fmt.Sprintf("Sync failed: %v", err), Private: true})
	}
	return r.Reply(ctx, Reply{Content: msgSynced, Private: true})
}

func (h *Handlers) exportLedger(ctx context.Context, a Action, r Replier) error {
	if !h.Policy.IsApprover(a.Actor) {
		return service.ErrForbidden
	}
	if err := r.Defer(ctx); err != nil {
		return err
	}
	file, err := h.Ledger.Export(ctx, a.Actor, 0)
	if err != nil {
		return err
	}
	return r.Reply(ctx, Reply{
		Content: fmt.Sprintf("Ledger export: %d entries.", file.Rows),
		Private: true,
		Files:   []port.FileAttachment{{Name: file.Name, ContentType: file.ContentType, Data: file.Data}},
	})
}

func actionRequest(a Action) service.ActionRequest {
	return service.ActionRequest{
		TicketID:  a.ChannelID,
		Actor:     a.Actor,
		MessageID: a.MessageID,
		Summary:   a.Summary,
	}
}

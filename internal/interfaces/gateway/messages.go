package gateway

import (
	"errors"

	"github.com/garyjia/faction-bank/internal/application/intake"
	"github.com/garyjia/faction-bank/internal/application/service"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/workflow"
)

// ErrNotInGuild is returned for guild-only actions used in a direct message
var ErrNotInGuild = errors.New("interaction outside a guild")

const (
	msgPong          = "Pong! ✅"
	msgPanelPosted   = "Panel posted."
	msgSynced        = "Slash commands force-synced to this server."
	msgClosing       = "Closing… uploading transcript and deleting this channel."
	msgChooseWhen    = "Select **when** to send the funds:"
	msgAmountHint    = "Amount must be like `1200000`, `1,200,000`, `10k`, `12m`, or `1.5b`."
	msgNotYours      = "This selection isn't for you."
	msgPickOption    = "Please choose one of the listed options."
	msgNoCategory    = "Couldn't resolve or create a tickets category."
	msgExpired       = "This prompt has expired. Press **Open Bank Ticket** to start again."
	msgNotTicket     = "This isn't a bank ticket channel."
	msgAlreadyClosed = "This ticket is already closed."
	msgBadTransition = "This ticket can't do that right now."
	msgGuildOnly     = "Use this in a server."
	msgUnknown       = "That control is no longer supported."
	msgFailed        = "Something went wrong. Please try again."
	msgDenied        = "You don't have permission to do that."
)

var denials = map[ActionKind]string{
	ActionPostPanel:    "You don't have permission to place the panel.",
	ActionClose:        "You don't have permission to close this.",
	ActionSync:         "You don't have permission to sync.",
	ActionExportLedger: "You don't have permission to export the ledger.",
}

// UserMessage is the text shown to the actor when an action fails
func UserMessage(kind ActionKind, err error) string {
	switch {
	case errors.Is(err, service.ErrForbidden):
		if text, ok := denials[kind]; ok {
			return text
		}
		return msgDenied
	case errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrNonPositiveAmount),
		errors.Is(err, entity.ErrAmountOutOfRange):
		return msgAmountHint
	case errors.Is(err, entity.ErrUnknownCondition):
		return msgPickOption
	case errors.Is(err, intake.ErrNotYourPrompt):
		return msgNotYours
	case errors.Is(err, intake.ErrPromptExpired):
		return msgExpired
	case errors.Is(err, service.ErrCategoryUnresolvable):
		return msgNoCategory
	case errors.Is(err, service.ErrTicketNotFound):
		return msgNotTicket
	case errors.Is(err, service.ErrTicketClosed):
		return msgAlreadyClosed
	case errors.Is(err, workflow.ErrInvalidTransition):
		return msgBadTransition
	case errors.Is(err, ErrNotInGuild):
		return msgGuildOnly
	case errors.Is(err, ErrUnknownControl):
		return msgUnknown
	}
	return msgFailed
}

// isUserError reports whether err is an expected refusal rather than a fault
func isUserError(err error) bool {
	return UserMessage(ActionUnknown, err) != msgFailed
}

// Package gateway turns chat-platform interactions into tagged actions and
// routes them through a typed handler table.
package gateway

import (
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// ActionKind tags an inbound interaction
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionOpenPanel
	ActionSubmitForm
	ActionSelectCondition
	ActionApprove
	ActionReject
	ActionClose
	ActionPostPanel
	ActionPing
	ActionSync
	ActionExportLedger
)

var actionNames = map[ActionKind]string{
	ActionUnknown:         "unknown",
	ActionOpenPanel:       "open_panel",
	ActionSubmitForm:      "submit_form",
	ActionSelectCondition: "select_condition",
	ActionApprove:         "approve",
	ActionReject:          "reject",
	ActionClose:           "close",
	ActionPostPanel:       "post_panel",
	ActionPing:            "ping",
	ActionSync:            "sync",
	ActionExportLedger:    "export_ledger",
}

// String returns the action name used in logs
func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return actionNames[ActionUnknown]
}

// Action is one decoded interaction. Only the fields of its Kind are set.
type Action struct {
	Kind      ActionKind
	GuildID   string
	ChannelID string
	Actor     entity.Member

	// SessionID is set for SubmitForm and SelectCondition
	SessionID string

	// Amount and Comment are set for SubmitForm
	Amount  string
	Comment string

	// Values is set for SelectCondition
	Values []string

	// MessageID and Summary describe the message an approval control sits on
	MessageID string
	Summary   *port.Embed
}

// InGuild reports whether the interaction happened inside a guild
func (a Action) InGuild() bool {
	return a.GuildID != ""
}

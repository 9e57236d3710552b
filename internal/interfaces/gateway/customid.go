package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/faction-bank/internal/application/port"
)

const customIDPrefix = "bank"

// Fixed control ids. The open id must never change: panels posted long ago still carry it.
const (
	OpenTicketID = customIDPrefix + ":open"
	ApproveID    = customIDPrefix + ":approve"
	RejectID     = customIDPrefix + ":reject"
	CloseID      = customIDPrefix + ":close"

	formScope      = "form"
	conditionScope = "cond"

	AmountFieldID  = "amount"
	CommentFieldID = "comment"
)

// ErrUnknownControl is returned for a custom id this process did not issue
var ErrUnknownControl = errors.New("unknown control")

// FormID is the custom id of the amount/comment form of a prompt session
func FormID(sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", customIDPrefix, formScope, sessionID)
}

// ConditionID is the custom id of the delivery condition menu of a prompt session
func ConditionID(sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", customIDPrefix, conditionScope, sessionID)
}

// ParseCustomID maps a custom id back to its action and prompt session
func ParseCustomID(customID string) (ActionKind, string, error) {
	switch customID {
	case OpenTicketID:
		return ActionOpenPanel, "", nil
	case ApproveID:
		return ActionApprove, "", nil
	case RejectID:
		return ActionReject, "", nil
	case CloseID:
		return ActionClose, "", nil
	}

	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[2] == "" {
		return ActionUnknown, "", fmt.Errorf("%w: %q", ErrUnknownControl, customID)
	}
	switch parts[1] {
	case formScope:
		return ActionSubmitForm, parts[2], nil
	case conditionScope:
		return ActionSelectCondition, parts[2], nil
	}
	return ActionUnknown, "", fmt.Errorf("%w: %q", ErrUnknownControl, customID)
}

// PanelButton is the persistent entry control
func PanelButton() port.Button {
	return port.Button{CustomID: OpenTicketID, Label: "Open Bank Ticket", Style: port.ButtonPrimary}
}

// SummaryControls are the approver controls attached to a ticket summary
func SummaryControls() []port.Button {
	return []port.Button{
		{CustomID: ApproveID, Label: "Approve", Style: port.ButtonSuccess},
		{CustomID: RejectID, Label: "Reject", Style: port.ButtonDanger},
		{CustomID: CloseID, Label: "Close", Style: port.ButtonSecondary},
	}
}

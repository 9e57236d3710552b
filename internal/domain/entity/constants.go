package entity

// Ticket status constants. Values match workflow.State.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusClosed   = "CLOSED"
)

// Input and naming limits imposed by the chat platform
const (
	MaxAmountInputLength  = 30
	MaxCommentLength      = 1000
	MaxChannelNameLength  = 95
	ClosedChannelPrefix   = "closed-"
	DefaultChannelPrefix  = "bank"
	EmptyTranscriptMarker = "(no messages)"
)

// Journal event type constants
const (
	JournalEventOpened   = "OPENED"
	JournalEventApproved = "APPROVED"
	JournalEventRejected = "REJECTED"
	JournalEventClosed   = "CLOSED"
)

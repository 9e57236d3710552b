package workflow

import "sync"

var (
	lifecycleOnce sync.Once
	lifecycle     Builder
)

// ticketLifecycle is the rule set shared by every ticket machine.
// Approve and Reject may be repeated from any open state; Close is the only
// way out and Closed has no outgoing transitions.
func ticketLifecycle() Builder {
	lifecycleOnce.Do(func() {
		b := NewBuilder()
		for _, open := range []State{StatePending, StateApproved, StateRejected} {
			b.Configure(open).
				Permit(TriggerApprove, StateApproved).
				Permit(TriggerReject, StateRejected).
				Permit(TriggerClose, StateClosed)
		}
		b.Configure(StateClosed)
		lifecycle = b
	})
	return lifecycle
}

// NewTicketMachine builds a ticket lifecycle machine in the given state
func NewTicketMachine(initial State) StateMachine {
	return ticketLifecycle().Build(initial)
}

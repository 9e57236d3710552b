package service

import (
	"sync"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/workflow"
)

// trackedTicket is the live state of one open ticket. All fields below mu
// are guarded by it.
type trackedTicket struct {
	mu      sync.Mutex
	ticket  entity.Ticket
	machine workflow.StateMachine
	summary *port.Embed
	closed  bool
}

// TicketRegistry holds the tickets this process knows about
type TicketRegistry struct {
	mu      sync.RWMutex
	tickets map[string]*trackedTicket
	closed  map[string]struct{}
}

// NewTicketRegistry creates an empty registry
func NewTicketRegistry() *TicketRegistry {
	return &TicketRegistry{
		tickets: make(map[string]*trackedTicket),
		closed:  make(map[string]struct{}),
	}
}

// Register tracks a ticket in the state given by its Status.
// An existing entry for the same id is kept.
func (r *TicketRegistry) Register(t entity.Ticket, summary *port.Embed) {
	r.track(t, summary)
}

func (r *TicketRegistry) track(t entity.Ticket, summary *port.Embed) *trackedTicket {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tickets[t.ID]; ok {
		return existing
	}

	state := workflow.State(t.Status)
	if !state.IsValid() {
		state = workflow.StatePending
		t.Status = string(state)
	}
	if _, gone := r.closed[t.ID]; gone {
		return &trackedTicket{ticket: t, machine: workflow.NewTicketMachine(workflow.StateClosed), closed: true}
	}
	tt := &trackedTicket{
		ticket:  t,
		machine: workflow.NewTicketMachine(state),
		summary: summary,
		closed:  state == workflow.StateClosed,
	}
	r.tickets[t.ID] = tt
	return tt
}

func (r *TicketRegistry) lookup(id string) (*trackedTicket, bool) {
	tt, ok, _ := r.find(id)
	return tt, ok
}

// find reports a tracked ticket, or whether the id was closed here, atomically
func (r *TicketRegistry) find(id string) (tt *trackedTicket, ok bool, closed bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, closed = r.closed[id]; closed {
		return nil, false, true
	}
	tt, ok = r.tickets[id]
	return tt, ok, false
}

// Remove forgets a ticket and remembers that it was closed
func (r *TicketRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tickets, id)
	r.closed[id] = struct{}{}
}

// Get returns a snapshot of a ticket
func (r *TicketRegistry) Get(id string) (entity.Ticket, bool) {
	tt, ok := r.lookup(id)
	if !ok {
		return entity.Ticket{}, false
	}
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.ticket, true
}

// Len returns the number of tracked tickets
func (r *TicketRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tickets)
}

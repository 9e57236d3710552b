package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateApproved, false},
		{StateRejected, false},
		{StateClosed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"pending", StatePending, true},
		{"closed", StateClosed, true},
		{"unknown", State("ARCHIVED"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	b := NewBuilder()

	first := b.Configure(StatePending)
	second := b.Configure(StatePending)
	if first != second {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_Panics(t *testing.T) {
	cases := map[string]func(){
		"configure invalid": func() { NewBuilder().Configure(State("BAD")) },
		"build invalid":     func() { NewBuilder().Build(State("BAD")) },
		"permit invalid":    func() { NewBuilder().Configure(StatePending).Permit(TriggerApprove, State("BAD")) },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s should panic", name)
				}
			}()
			fn()
		})
	}
}

func TestStateMachine_Fire(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	m := b.Build(StatePending)
	if m.CanFire(TriggerReject) {
		t.Error("CanFire(REJECT) should be false when not configured")
	}
	if _, err := m.Fire(context.Background(), TriggerReject); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.State() != StatePending {
		t.Errorf("State should remain %v after failed Fire(), got %v", StatePending, m.State())
	}

	tr, err := m.Fire(context.Background(), TriggerApprove)
	if err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if tr.From != StatePending || tr.To != StateApproved || tr.Trigger != TriggerApprove {
		t.Errorf("Fire() transition = %+v", tr)
	}
}

func TestBuilder_PermitReplacesTarget(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).
		Permit(TriggerApprove, StateRejected).
		Permit(TriggerApprove, StateApproved)

	m := b.Build(StatePending)
	if _, err := m.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m.State() != StateApproved {
		t.Errorf("State = %v, want %v", m.State(), StateApproved)
	}
}

func TestStateMachine_BuildIsolation(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	m1 := b.Build(StatePending)
	m2 := b.Build(StatePending)

	if _, err := m1.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StatePending {
		t.Errorf("m2 state = %v, want %v (machines should be independent)", m2.State(), StatePending)
	}

	// rules added after Build must not reach existing machines
	b.Configure(StatePending).Permit(TriggerClose, StateClosed)
	if m2.CanFire(TriggerClose) {
		t.Error("machine built earlier should not see later rules")
	}
}

func TestTicketMachine_ApproveAndRejectFromPending(t *testing.T) {
	for _, tc := range []struct {
		trigger Trigger
		want    State
	}{
		{TriggerApprove, StateApproved},
		{TriggerReject, StateRejected},
	} {
		t.Run(string(tc.trigger), func(t *testing.T) {
			m := NewTicketMachine(StatePending)
			if _, err := m.Fire(context.Background(), tc.trigger); err != nil {
				t.Fatalf("Fire() failed: %v", err)
			}
			if m.State() != tc.want {
				t.Errorf("State = %v, want %v", m.State(), tc.want)
			}
		})
	}
}

func TestTicketMachine_CloseFromEveryOpenState(t *testing.T) {
	for _, start := range []State{StatePending, StateApproved, StateRejected} {
		t.Run(string(start), func(t *testing.T) {
			m := NewTicketMachine(start)
			if _, err := m.Fire(context.Background(), TriggerClose); err != nil {
				t.Fatalf("Fire(CLOSE) failed: %v", err)
			}
			if m.State() != StateClosed {
				t.Errorf("State = %v, want %v", m.State(), StateClosed)
			}
		})
	}
}

func TestTicketMachine_ClosedHasNoExit(t *testing.T) {
	m := NewTicketMachine(StateClosed)

	for _, trigger := range []Trigger{TriggerApprove, TriggerReject, TriggerClose} {
		if m.CanFire(trigger) {
			t.Errorf("CanFire(%s) from Closed should be false", trigger)
		}
		if _, err := m.Fire(context.Background(), trigger); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(%s) error = %v, want %v", trigger, err, ErrInvalidTransition)
		}
	}
	if m.State() != StateClosed {
		t.Errorf("State = %v, want %v", m.State(), StateClosed)
	}
}

func TestTicketMachine_RepeatedApproval(t *testing.T) {
	m := NewTicketMachine(StatePending)

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerApprove, StateApproved},
		{TriggerApprove, StateApproved},
		{TriggerReject, StateRejected},
		{TriggerApprove, StateApproved},
		{TriggerClose, StateClosed},
	}

	for i, step := range steps {
		if _, err := m.Fire(context.Background(), step.trigger); err != nil {
			t.Fatalf("Step %d: Fire(%v) failed: %v", i, step.trigger, err)
		}
		if m.State() != step.want {
			t.Errorf("Step %d: State = %v, want %v", i, m.State(), step.want)
		}
	}
	if !m.State().IsTerminal() {
		t.Error("final state should be terminal")
	}
}

func TestTicketMachine_LifecycleSharedAcrossMachines(t *testing.T) {
	first := NewTicketMachine(StatePending)
	second := NewTicketMachine(StatePending)

	if _, err := first.Fire(context.Background(), TriggerClose); err != nil {
		t.Fatalf("Fire(CLOSE) failed: %v", err)
	}
	if second.State() != StatePending {
		t.Errorf("second machine state = %v, want %v", second.State(), StatePending)
	}
	for _, trigger := range []Trigger{TriggerApprove, TriggerReject, TriggerClose} {
		if !second.CanFire(trigger) {
			t.Errorf("CanFire(%s) from Pending should be true", trigger)
		}
	}
}

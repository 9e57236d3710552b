package workflow

import (
	"context"
	"fmt"
)

// Builder collects transition rules and produces independent machines
type Builder interface {
	// Configure returns the rule set for a source state
	Configure(state State) StateConfiguration

	// Build creates a machine starting in initialState
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions leaving one state
type StateConfiguration interface {
	// Permit allows a trigger to move to the target state
	Permit(trigger Trigger, toState State) StateConfiguration
}

// ruleSet maps a trigger to its target state; a trigger has at most one target
type ruleSet map[Trigger]State

func (r ruleSet) clone() ruleSet {
	out := make(ruleSet, len(r))
	for trigger, to := range r {
		out[trigger] = to
	}
	return out
}

type stateConfig struct {
	rules ruleSet
}

type builder struct {
	configs map[State]*stateConfig
}

type machine struct {
	current State
	rules   map[State]ruleSet
}

// NewBuilder creates an empty builder
func NewBuilder() Builder {
	return &builder{configs: make(map[State]*stateConfig)}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	cfg, ok := b.configs[state]
	if !ok {
		cfg = &stateConfig{rules: make(ruleSet)}
		b.configs[state] = cfg
	}
	return cfg
}

// Build snapshots the rules so later Configure calls do not leak into built machines
func (b *builder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	rules := make(map[State]ruleSet, len(b.configs))
	for state, cfg := range b.configs {
		rules[state] = cfg.rules.clone()
	}
	return &machine{current: initialState, rules: rules}
}

// Permit replaces any earlier target configured for the trigger
func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.rules[trigger] = toState
	return c
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	_, ok := m.rules[m.current][trigger]
	return ok
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) (Transition, error) {
	to, ok := m.rules[m.current][trigger]
	if !ok {
		return Transition{}, fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	t := Transition{From: m.current, To: to, Trigger: trigger}
	m.current = to
	return t, nil
}

package statemachine

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Action executes side effects during state transitions. Returning an error prevents the transition.
type Action[S, E comparable] func(ctx context.Context, from, to S, event E, data any) error

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard[S, E comparable] func(ctx context.Context, from S, event E, data any) bool

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition[S, E comparable] struct {
	From    S
	To      S
	Event   E
	Guards  []Guard[S, E]  // All must pass for transition to proceed
	Actions []Action[S, E] // Executed in order before state change
}

// Definition is an immutable transition table.
type Definition[S, E comparable] struct {
	initial     S
	transitions map[S][]Transition[S, E]
}

// Option configures a Definition during construction.
type Option[S, E comparable] func(*Definition[S, E]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[S, E comparable] func(*Transition[S, E])

// NewDefinition builds a transition table starting at initial.
func NewDefinition[S, E comparable](initial S, opts ...Option[S, E]) (*Definition[S, E], error) {
	d := &Definition[S, E]{
		initial:     initial,
		transitions: make(map[S][]Transition[S, E]),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustDefinition is NewDefinition that panics on a misconfigured table.
func MustDefinition[S, E comparable](initial S, opts ...Option[S, E]) *Definition[S, E] {
	d, err := NewDefinition(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine definition: %v", err))
	}
	return d
}

// WithTransition adds a single transition. Several transitions may share a
// from/event pair; the first whose guards pass wins.
func WithTransition[S, E comparable](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(d *Definition[S, E]) error {
		var zeroS S
		var zeroE E
		if from == zeroS || to == zeroS || event == zeroE {
			return ErrInvalidTransition
		}
		t := Transition[S, E]{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		d.transitions[from] = append(d.transitions[from], t)
		return nil
	}
}

// WithGuard adds a guard to a transition.
func WithGuard[S, E comparable](guard Guard[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if guard != nil {
			t.Guards = append(t.Guards, guard)
		}
	}
}

// WithAction adds an action to a transition.
func WithAction[S, E comparable](action Action[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if action != nil {
			t.Actions = append(t.Actions, action)
		}
	}
}

// Initial returns the starting state.
func (d *Definition[S, E]) Initial() S {
	return d.initial
}

// Next evaluates event from state from and returns the resulting state.
// Actions of the selected transition run before Next returns.
func (d *Definition[S, E]) Next(ctx context.Context, from S, event E, data any) (S, error) {
	t, err := d.lookup(ctx, from, event, data)
	if err != nil {
		return from, err
	}
	for _, action := range t.Actions {
		if err := action(ctx, from, t.To, event, data); err != nil {
			return from, fmt.Errorf("action failed: %w", err)
		}
	}
	return t.To, nil
}

// Can reports whether event would be accepted in state from. Actions are not run.
func (d *Definition[S, E]) Can(ctx context.Context, from S, event E, data any) bool {
	_, err := d.lookup(ctx, from, event, data)
	return err == nil
}

// Events lists the events defined for state from, in registration order.
func (d *Definition[S, E]) Events(from S) []E {
	var events []E
	for _, t := range d.transitions[from] {
		if !slices.Contains(events, t.Event) {
			events = append(events, t.Event)
		}
	}
	return events
}

// IsTerminal reports whether no transition leaves state s.
func (d *Definition[S, E]) IsTerminal(s S) bool {
	return len(d.transitions[s]) == 0
}

func (d *Definition[S, E]) lookup(ctx context.Context, from S, event E, data any) (*Transition[S, E], error) {
	defined := false
	for i, t := range d.transitions[from] {
		if t.Event != event {
			continue
		}
		defined = true
		if guardsPass(ctx, t.Guards, from, event, data) {
			return &d.transitions[from][i], nil
		}
	}
	if !defined {
		return nil, NewErrNoTransitionAvailable(from, event)
	}
	return nil, NewErrTransitionRejected(from, event)
}

func guardsPass[S, E comparable](ctx context.Context, guards []Guard[S, E], from S, event E, data any) bool {
	for _, guard := range guards {
		if !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}

// Machine holds a current state over a Definition. It is safe for concurrent use.
type Machine[S, E comparable] struct {
	def     *Definition[S, E]
	current S
	mu      sync.RWMutex
}

// New returns a Machine positioned at the definition's initial state.
func New[S, E comparable](def *Definition[S, E]) *Machine[S, E] {
	return &Machine[S, E]{def: def, current: def.initial}
}

// Restore returns a Machine positioned at state, typically loaded from storage.
func Restore[S, E comparable](def *Definition[S, E], state S) *Machine[S, E] {
	return &Machine[S, E]{def: def, current: state}
}

func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies event. The state is unchanged when a guard or action fails.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := m.def.Next(ctx, m.current, event, data)
	if err != nil {
		return err
	}
	m.current = next
	return nil
}

func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def.Can(ctx, m.current, event, data)
}

func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.def.initial
}

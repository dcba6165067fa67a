package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// SimpleStateMachine keeps its transitions in memory, indexed by state name
// and then event name. It is safe for concurrent use. Guards and actions run
// with the machine locked and must not call back into it.
type SimpleStateMachine struct {
	mu          sync.RWMutex
	initial     State
	current     State
	transitions map[string]map[string][]Transition
}

var _ StateMachine = (*SimpleStateMachine)(nil)

// NewSimpleStateMachine creates a machine sitting in initial.
func NewSimpleStateMachine(initial State) *SimpleStateMachine {
	return &SimpleStateMachine{
		initial:     initial,
		current:     initial,
		transitions: make(map[string]map[string][]Transition),
	}
}

func (sm *SimpleStateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// AddTransition registers a transition. Several transitions may share a
// state and event; Fire takes the first whose guards pass.
func (sm *SimpleStateMachine) AddTransition(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	byEvent, ok := sm.transitions[from.Name()]
	if !ok {
		byEvent = make(map[string][]Transition)
		sm.transitions[from.Name()] = byEvent
	}
	byEvent[event.Name()] = append(byEvent[event.Name()], Transition{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

// Fire takes the first allowed transition for event, runs its actions in
// order and moves to its target state. A failing action leaves the state
// unchanged.
func (sm *SimpleStateMachine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	tr, err := sm.match(ctx, event, data)
	if err != nil {
		return err
	}
	for _, action := range tr.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, sm.current, tr.To, event, data); err != nil {
			return fmt.Errorf("statemachine: action for %q: %w", event.Name(), err)
		}
	}
	sm.current = tr.To
	return nil
}

// CanFire reports whether Fire would find an allowed transition. Actions are
// not run, so Fire may still fail.
func (sm *SimpleStateMachine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	_, err := sm.match(ctx, event, data)
	return err == nil
}

// Reset moves the machine back to its initial state.
func (sm *SimpleStateMachine) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.current = sm.initial
	return nil
}

// match returns the first transition for event whose guards all pass.
// Callers hold sm.mu.
func (sm *SimpleStateMachine) match(ctx context.Context, event Event, data any) (*Transition, error) {
	state := sm.current.Name()
	candidates := sm.transitions[state][event.Name()]
	if len(candidates) == 0 {
		return nil, &NoTransitionError{State: state, Event: event.Name()}
	}

	for i := range candidates {
		if sm.allowed(ctx, &candidates[i], event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &RejectedError{State: state, Event: event.Name()}
}

func (sm *SimpleStateMachine) allowed(ctx context.Context, tr *Transition, event Event, data any) bool {
	for _, guard := range tr.Guards {
		if guard != nil && !guard(ctx, sm.current, event, data) {
			return false
		}
	}
	return true
}

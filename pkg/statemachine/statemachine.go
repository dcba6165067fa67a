// Package statemachine is a small in-memory finite state machine. States and
// events are named values; transitions are registered per (state, event)
// pair and may carry guards that choose between them and actions that run
// before the state changes.
//
//	const (
//	    Idle    = statemachine.StringState("idle")
//	    Running = statemachine.StringState("running")
//	    Start   = statemachine.StringEvent("start")
//	)
//
//	sm := statemachine.NewSimpleStateMachine(Idle)
//	_ = sm.AddTransition(Idle, Running, Start, nil, nil)
//	err := sm.Fire(ctx, Start, nil)
package statemachine

import "context"

// State is a node of the machine, identified by its name.
type State interface {
	Name() string
}

// Event triggers transitions, identified by its name.
type Event interface {
	Name() string
}

// Action runs before the state changes. A non-nil error aborts the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard decides whether a transition may be taken.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition moves the machine from From to To when Event fires and every
// guard passes.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard
	Actions []Action
}

// StateMachine is the interface implemented by SimpleStateMachine.
type StateMachine interface {
	Current() State
	AddTransition(from, to State, event Event, guards []Guard, actions []Action) error
	Fire(ctx context.Context, event Event, data any) error
	CanFire(ctx context.Context, event Event, data any) bool
	Reset() error
}

// StringState is a State named by its value.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is an Event named by its value.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

package notifyclient

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/statemachine"
)

// Status is the connection state of a Client.
type Status string

const (
	StatusDisconnected  Status = "disconnected"
	StatusConnecting    Status = "connecting"
	StatusConnected     Status = "connected"
	StatusAuthenticated Status = "authenticated"
)

func (s Status) String() string {
	return string(s)
}

// transitions lists the allowed target states for each state. Disconnect is
// always allowed. A transport that reconnects without announcing the attempt
// may go straight from disconnected to connected, and a repeated
// authentication reply re-seeds the counter of an authenticated client.
var transitions = map[Status][]Status{
	StatusDisconnected:  {StatusDisconnected, StatusConnecting, StatusConnected},
	StatusConnecting:    {StatusConnecting, StatusConnected, StatusDisconnected},
	StatusConnected:     {StatusAuthenticated, StatusDisconnected},
	StatusAuthenticated: {StatusAuthenticated, StatusDisconnected},
}

// CanTransition reports whether the status table allows from -> to.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// queues reports whether pushes received in this state are held in the
// pending queue instead of being counted and fanned out.
func (s Status) queues() bool {
	return s == StatusDisconnected || s == StatusConnecting
}

func (s Status) state() statemachine.StringState {
	return statemachine.StringState(s)
}

// event is the machine event that moves a client into s.
func (s Status) event() statemachine.StringEvent {
	return statemachine.StringEvent(s)
}

// newStatusMachine builds a machine starting disconnected with one
// transition per entry of the status table, each logging real changes.
func newStatusMachine(log *slog.Logger) *statemachine.SimpleStateMachine {
	logChange := func(ctx context.Context, from, to statemachine.State, _ statemachine.Event, _ any) error {
		if from.Name() != to.Name() {
			log.LogAttrs(ctx, slog.LevelDebug, "Connection status changed",
				slog.String("from", from.Name()),
				logger.Status(to.Name()),
			)
		}
		return nil
	}

	sm := statemachine.NewSimpleStateMachine(StatusDisconnected.state())
	for from, targets := range transitions {
		for _, to := range targets {
			// Inputs are never nil, so AddTransition cannot fail.
			_ = sm.AddTransition(from.state(), to.state(), to.event(), nil, []statemachine.Action{logChange})
		}
	}
	return sm
}

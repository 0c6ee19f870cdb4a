// Package fsm validates lifecycle transitions using looplab/fsm.
package fsm

import (
	"context"
	"errors"
	"fmt"

	loopfsm "github.com/looplab/fsm"

	"dramcask/internal/revision/models"
)

// TransitionError is returned when an event is not legal from the current
// lifecycle status. The engine maps it to a reason-qualified InvalidState
// domain error.
type TransitionError struct {
	Event   models.Event
	Current models.LifecycleStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from status %q", e.Event, e.Current)
}

// events converts models.Transitions into looplab/fsm EventDesc format,
// consolidating transitions with the same event+destination into a single
// EventDesc with multiple source states (EventSubmit from DRAFT and
// CONFIRMED both go to IN_REVIEW).
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range models.Transitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// Validator checks lifecycle transition legality. looplab/fsm is stateful
// (it tracks the current state internally), so a short-lived machine is
// created per Apply call, initialized with the entity's current status.
type Validator struct{}

// New creates an FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Apply checks whether event is legal from current and returns the
// destination status. Returns a *TransitionError when it is not.
func (v *Validator) Apply(ctx context.Context, current models.LifecycleStatus, event models.Event) (models.LifecycleStatus, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &TransitionError{Event: event, Current: current}
		}
		return "", err
	}

	return models.LifecycleStatus(machine.Current()), nil
}

package entities

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// GameStatus is the lifecycle state shared by tables and games
type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
	StatusCancelled  GameStatus = "cancelled"
)

// Lifecycle events
const (
	EventStart    = "start"
	EventComplete = "complete"
	EventCancel   = "cancel"
)

var statusEvents = fsm.Events{
	{Name: EventStart, Src: []string{string(StatusScheduled)}, Dst: string(StatusInProgress)},
	{Name: EventComplete, Src: []string{string(StatusInProgress)}, Dst: string(StatusCompleted)},
	{Name: EventCancel, Src: []string{string(StatusScheduled), string(StatusInProgress)}, Dst: string(StatusCancelled)},
}

// Valid reports whether s is one of the known statuses
func (s GameStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s
func (s GameStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func eventFor(to GameStatus) (string, bool) {
	switch to {
	case StatusInProgress:
		return EventStart, true
	case StatusCompleted:
		return EventComplete, true
	case StatusCancelled:
		return EventCancel, true
	}
	return "", false
}

// Transition moves a status from one state to another through the lifecycle
// machine. Staying in the same state is allowed and returns from unchanged.
func Transition(ctx context.Context, from, to GameStatus) (GameStatus, error) {
	if !to.Valid() {
		return from, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if from == to {
		return from, nil
	}
	event, ok := eventFor(to)
	if !ok {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	machine := fsm.NewFSM(string(from), statusEvents, fsm.Callbacks{})
	if err := machine.Event(ctx, event); err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		return from, fmt.Errorf("status transition %s -> %s: %w", from, to, err)
	}
	return GameStatus(machine.Current()), nil
}

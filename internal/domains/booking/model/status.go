package model

import (
	"errors"
	"fmt"
	"slices"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusInUse    Status = "in_use"
	StatusDone     Status = "done"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusInUse},
	StatusInUse:    {StatusDone},
	StatusRejected: {},
	StatusDone:     {},
}

func (s Status) IsValid() bool {
	_, exists := validTransitions[s]

	return exists
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}

	return slices.Contains(allowed, target)
}

func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]

	return !exists || len(allowed) == 0
}

func (s Status) String() string {
	return string(s)
}

// Transition returns target when the move is allowed. With strict unset every move is accepted so that
// administrative flows (check-in straight from pending) keep working.
func (s Status) Transition(target Status, strict bool) (Status, error) {
	if !target.IsValid() {
		return s, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}

	if strict && !s.CanTransitionTo(target) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}

	return target, nil
}

func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", value)
	}

	return status, nil
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusInUse, StatusDone}
}

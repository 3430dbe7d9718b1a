package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not permitted
	// by the transition table. The record must not be mutated.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not one of the canonical states
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnknownActor is returned when an actor has no stage in the approval pipeline
	ErrUnknownActor = errors.New("actor cannot perform approval actions")
)

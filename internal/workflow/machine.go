package workflow

import "fmt"

// Actor identifies who is driving a status transition.
type Actor string

const (
	ActorEmployee   Actor = "employee"
	ActorAccountant Actor = "accountant"
	ActorManager    Actor = "manager"
)

// String returns the string representation of the actor
func (a Actor) String() string {
	return string(a)
}

// IsValid returns true if the actor is a known role
func (a Actor) IsValid() bool {
	return a == ActorEmployee || a == ActorAccountant || a == ActorManager
}

type transitionKey struct {
	actor Actor
	from  Status
	to    Status
}

// transitions is the full table of permitted status changes.
// The accountant reviews pending reports; the manager finalizes
// accountant-approved ones. Nothing else is allowed, including
// re-applying a transition that already happened.
var transitions = map[transitionKey]bool{
	{ActorAccountant, StatusPending, StatusApproved}:        true,
	{ActorAccountant, StatusPending, StatusRejected}:        true,
	{ActorManager, StatusApproved, StatusFinalApproved}:     true,
	{ActorManager, StatusApproved, StatusRejectedByManager}: true,
}

// CanTransition reports whether the actor may move a record from its
// current status to the target status.
func CanTransition(current Status, actor Actor, target Status) bool {
	return transitions[transitionKey{actor, current, target}]
}

// Transition validates and applies a status change, returning the new
// status. On any disallowed combination the current status is returned
// unchanged together with ErrInvalidTransition.
func Transition(current Status, actor Actor, target Status) (Status, error) {
	if !current.IsValid() {
		return current, fmt.Errorf("%w: %q", ErrInvalidStatus, current)
	}
	if !target.IsValid() {
		return current, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	if !CanTransition(current, actor, target) {
		return current, fmt.Errorf("%w: %s cannot move %s to %s", ErrInvalidTransition, actor, current, target)
	}
	return target, nil
}

// PermittedTargets returns the statuses the actor may move a record with
// the given current status into.
func PermittedTargets(current Status, actor Actor) []Status {
	targets := make([]Status, 0, 2)
	for _, candidate := range []Status{StatusApproved, StatusRejected, StatusFinalApproved, StatusRejectedByManager} {
		if CanTransition(current, actor, candidate) {
			targets = append(targets, candidate)
		}
	}
	return targets
}

// ApproveTarget maps an "approve" command onto the actor's target status
func ApproveTarget(actor Actor) (Status, error) {
	switch actor {
	case ActorAccountant:
		return StatusApproved, nil
	case ActorManager:
		return StatusFinalApproved, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
}

// RejectTarget maps a "reject" command onto the actor's target status
func RejectTarget(actor Actor) (Status, error) {
	switch actor {
	case ActorAccountant:
		return StatusRejected, nil
	case ActorManager:
		return StatusRejectedByManager, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
}

// Package workflow holds the moderated-action engine: the confirmation gate,
// the archive capacity allocator and the archive and sanction workflows.
//
// Nothing in this package talks to Discord. Collaborators that present
// prompts, move channels or restrict members are passed in as interfaces.
package workflow

import (
	"context"
	"time"
)

// Actor is a guild member as seen by the authority checks.
type Actor struct {
	ID   string
	Name string
	// Rank is the position of the member's highest role.
	Rank          int
	Administrator bool
	Moderator     bool
}

func IsAdministrator(a Actor) bool {
	return a.Administrator
}

func IsModerator(a Actor) bool {
	return a.Moderator || a.Administrator
}

// Resource is the thing being archived, usually a guild channel.
type Resource struct {
	ID      string
	Name    string
	Mention string
}

// Confirmer presents a ConfirmationRequest and blocks until it resolves.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmationRequest) ConfirmationResult
}

// Mover relocates a resource into the pool chosen by the allocator.
// Occupancy bookkeeping belongs to the implementation.
type Mover interface {
	MoveResource(ctx context.Context, res Resource, pool CapacityPool, requester Actor) error
}

// Restrictor applies a time-bound restriction to a member.
type Restrictor interface {
	ApplyRestriction(ctx context.Context, target Actor, until time.Time, reason string) error
}

type Outcome uint8

const (
	OutcomeMoved Outcome = iota + 1
	OutcomeDeclined
	OutcomeTimedOut
	OutcomeExhausted
	OutcomeUnauthorized
	OutcomeApplied
	OutcomeTargetProtected
	OutcomeInvalidDuration
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeDeclined:
		return "declined"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeApplied:
		return "applied"
	case OutcomeTargetProtected:
		return "target_protected"
	case OutcomeInvalidDuration:
		return "invalid_duration"
	default:
		return "unknown"
	}
}

package workflow

import (
	"context"
	"fmt"
	"time"
)

type ArchiveRequest struct {
	Resource  Resource
	Pools     []CapacityPool
	Requester Actor
	// Prompt overrides the default confirmation text.
	Prompt string
}

type ArchiveResult struct {
	Outcome Outcome
	// Pool is set only when Outcome is OutcomeMoved.
	Pool CapacityPool
}

// Archiver moves a resource into the first archive pool with room, after
// the requester confirms.
type Archiver struct {
	confirmer Confirmer
	mover     Mover
	timeout   time.Duration
	authorize func(Actor) bool
}

type ArchiverOption func(*Archiver)

func WithConfirmTimeout(d time.Duration) ArchiverOption {
	return func(a *Archiver) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAuthorizer replaces the administrator check.
func WithAuthorizer(fn func(Actor) bool) ArchiverOption {
	return func(a *Archiver) {
		if fn != nil {
			a.authorize = fn
		}
	}
}

func NewArchiver(confirmer Confirmer, mover Mover, opts ...ArchiverOption) *Archiver {
	a := &Archiver{
		confirmer: confirmer,
		mover:     mover,
		timeout:   DefaultConfirmTimeout,
		authorize: IsAdministrator,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive runs authorize, allocate, confirm, move in that order. Each step
// must pass before the next one runs. The error is non-nil only when the
// mover fails after confirmation.
func (a *Archiver) Archive(ctx context.Context, req ArchiveRequest) (ArchiveResult, error) {
	if !a.authorize(req.Requester) {
		return ArchiveResult{Outcome: OutcomeUnauthorized}, nil
	}

	pool, ok := Allocate(req.Pools)
	if !ok {
		return ArchiveResult{Outcome: OutcomeExhausted}, nil
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = fmt.Sprintf("Are you sure you want to archive %s?", resourceLabel(req.Resource))
	}

	answer := a.confirmer.Confirm(ctx, ConfirmationRequest{
		Prompt:     prompt,
		Respondent: req.Requester,
		Timeout:    a.timeout,
	})
	switch answer {
	case Confirmed:
	case Declined:
		return ArchiveResult{Outcome: OutcomeDeclined}, nil
	default:
		return ArchiveResult{Outcome: OutcomeTimedOut}, nil
	}

	if err := a.mover.MoveResource(ctx, req.Resource, pool, req.Requester); err != nil {
		return ArchiveResult{}, fmt.Errorf("move %s to %s: %w", req.Resource.ID, pool.ID, err)
	}

	return ArchiveResult{Outcome: OutcomeMoved, Pool: pool}, nil
}

func resourceLabel(r Resource) string {
	switch {
	case r.Mention != "":
		return r.Mention
	case r.Name != "":
		return r.Name
	default:
		return r.ID
	}
}

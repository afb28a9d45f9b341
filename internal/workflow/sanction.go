package workflow

import (
	"context"
	"fmt"
	"time"

	"go-warden/internal/duration"
)

type SanctionRequest struct {
	Actor  Actor
	Target Actor
	// Bot is the bot's own member; the platform refuses to restrict anyone
	// ranked above it.
	Bot      Actor
	Duration string
	Reason   string
}

type SanctionResult struct {
	Outcome  Outcome
	Expiry   time.Time
	Duration duration.Duration
	// ParseErr is set when Outcome is OutcomeInvalidDuration.
	ParseErr error
}

// Sanctioner applies time-bound restrictions after the authority checks.
type Sanctioner struct {
	restrictor Restrictor
	now        func() time.Time
}

func NewSanctioner(restrictor Restrictor, now func() time.Time) *Sanctioner {
	if now == nil {
		now = time.Now
	}
	return &Sanctioner{restrictor: restrictor, now: now}
}

// Sanction checks the actor, then the target, then the duration, stopping
// at the first failure. The error is non-nil only when the restrictor fails.
func (s *Sanctioner) Sanction(ctx context.Context, req SanctionRequest) (SanctionResult, error) {
	if !IsModerator(req.Actor) {
		return SanctionResult{Outcome: OutcomeUnauthorized}, nil
	}

	if Protected(req.Target, req.Bot) {
		return SanctionResult{Outcome: OutcomeTargetProtected}, nil
	}

	d, err := duration.Parse(req.Duration)
	if err != nil {
		return SanctionResult{Outcome: OutcomeInvalidDuration, ParseErr: err}, nil
	}

	expiry := s.now().Add(d.Std())
	if err := s.restrictor.ApplyRestriction(ctx, req.Target, expiry, req.Reason); err != nil {
		return SanctionResult{}, fmt.Errorf("restrict %s: %w", req.Target.ID, err)
	}

	return SanctionResult{Outcome: OutcomeApplied, Expiry: expiry, Duration: d}, nil
}

// Protected reports whether target is out of the bot's reach. Equal rank
// is not protected.
func Protected(target, bot Actor) bool {
	return target.Administrator || target.Rank > bot.Rank
}

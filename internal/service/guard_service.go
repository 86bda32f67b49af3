package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/fingerprint"
	"github.com/stemsi/questionnaire/internal/repository"
)

// GuardState is the eligibility of a device to submit the questionnaire.
type GuardState int

const (
	GuardEligible GuardState = iota
	GuardBlocked
)

func (s GuardState) String() string {
	if s == GuardBlocked {
		return "blocked"
	}
	return "eligible"
}

// SubmissionGuard decides whether a device already submitted recently, from
// its fingerprint and the time of its last successful submission.
type SubmissionGuard struct {
	store         repository.StateStore
	window        time.Duration
	developerMode bool
	now           func() time.Time
	log           zerolog.Logger
}

// NewSubmissionGuard creates a SubmissionGuard persisting to store.
func NewSubmissionGuard(cfg *config.Config, store repository.StateStore, log zerolog.Logger) *SubmissionGuard {
	return &SubmissionGuard{
		store:         store,
		window:        cfg.GuardWindow,
		developerMode: cfg.DeveloperMode,
		now:           time.Now,
		log:           log.With().Str("component", "submission_guard").Logger(),
	}
}

// WithStore returns a copy of the guard bound to another store, e.g. the
// cookies of the current request.
func (g *SubmissionGuard) WithStore(store repository.StateStore) *SubmissionGuard {
	cp := *g
	cp.store = store
	return &cp
}

// CheckIfAlreadySubmitted reports Blocked when the probed device submitted
// less than the guard window ago. Older entries are ignored but left in place.
func (g *SubmissionGuard) CheckIfAlreadySubmitted(ctx context.Context, probe fingerprint.EnvironmentProbe) (GuardState, error) {
	if g.developerMode {
		g.log.Debug().Msg("developer mode: duplicate-submission guard disabled")
		return GuardEligible, nil
	}

	fp := fingerprint.Generate(probe)
	raw, ok, err := g.store.Get(ctx, config.StateKey.SubmittedKey(fp))
	if err != nil {
		return GuardEligible, fmt.Errorf("read submission state: %w", err)
	}
	if !ok {
		return GuardEligible, nil
	}

	submittedMs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		g.log.Warn().Str("fingerprint", fp).Str("value", raw).Msg("ignoring unreadable submission timestamp")
		return GuardEligible, nil
	}

	age := g.now().Sub(time.UnixMilli(submittedMs))
	if age < g.window {
		return GuardBlocked, nil
	}
	return GuardEligible, nil
}

// MarkAsSubmitted records now as the device's last successful submission.
// Store failures are returned to the caller.
func (g *SubmissionGuard) MarkAsSubmitted(ctx context.Context, probe fingerprint.EnvironmentProbe) error {
	if g.developerMode {
		g.log.Debug().Msg("developer mode: submission not recorded")
		return nil
	}

	fp := fingerprint.Generate(probe)
	value := strconv.FormatInt(g.now().UnixMilli(), 10)
	if err := g.store.Set(ctx, config.StateKey.SubmittedKey(fp), value); err != nil {
		return fmt.Errorf("write submission state: %w", err)
	}
	return nil
}

// ResetSubmissionStatus forgets the device's last submission.
func (g *SubmissionGuard) ResetSubmissionStatus(ctx context.Context, probe fingerprint.EnvironmentProbe) error {
	fp := fingerprint.Generate(probe)
	if err := g.store.Remove(ctx, config.StateKey.SubmittedKey(fp)); err != nil {
		return fmt.Errorf("reset submission state: %w", err)
	}
	g.log.Info().Str("fingerprint", fp).Msg("submission status reset")
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pacing spaces out model calls so a run stays under the backend's
// request-rate limit. Two strategies exist: Fixed reproduces the classic
// stage delays, TokenBucket admits calls at a steady rate with a small burst.
package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/coursegen/pkg/types"
)

// Point identifies where in the pipeline a pause happens.
type Point int

const (
	// AfterSyllabus follows the curriculum stage.
	AfterSyllabus Point = iota
	// BetweenStages separates content, review and quiz within one module.
	BetweenStages
	// AfterModule is the cooldown before the next module starts.
	AfterModule
)

func (p Point) String() string {
	switch p {
	case AfterSyllabus:
		return "after-syllabus"
	case BetweenStages:
		return "between-stages"
	case AfterModule:
		return "after-module"
	default:
		return fmt.Sprintf("point(%d)", int(p))
	}
}

// Default delays.
const (
	DefaultSyllabusDelay  = 10 * time.Second
	DefaultStageDelay     = 10 * time.Second
	DefaultModuleCooldown = 30 * time.Second
	DefaultRPM            = 6.0
)

// Pacer blocks until the pipeline may proceed past point p.
// Wait returns ctx.Err() when the context ends first.
type Pacer interface {
	Wait(ctx context.Context, p Point) error
}

// Fixed sleeps a constant duration at every point.
type Fixed struct {
	SyllabusDelay  time.Duration
	StageDelay     time.Duration
	ModuleCooldown time.Duration
}

// Delay returns the pause length for p.
func (f Fixed) Delay(p Point) time.Duration {
	switch p {
	case AfterSyllabus:
		return f.SyllabusDelay
	case BetweenStages:
		return f.StageDelay
	case AfterModule:
		return f.ModuleCooldown
	default:
		return 0
	}
}

// Wait sleeps for Delay(p).
func (f Fixed) Wait(ctx context.Context, p Point) error {
	return sleep(ctx, f.Delay(p))
}

// TokenBucket admits one call per token. The module cooldown is still
// honoured so a module boundary always leaves headroom.
type TokenBucket struct {
	limiter  *rate.Limiter
	cooldown time.Duration
}

// NewTokenBucket allows rpm requests per minute with a burst of one.
func NewTokenBucket(rpm float64, cooldown time.Duration) *TokenBucket {
	if rpm <= 0 {
		rpm = DefaultRPM
	}
	return &TokenBucket{
		limiter:  rate.NewLimiter(rate.Limit(rpm/60.0), 1),
		cooldown: cooldown,
	}
}

// Wait takes a token, then sleeps the cooldown after a module.
func (t *TokenBucket) Wait(ctx context.Context, p Point) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if p == AfterModule {
		return sleep(ctx, t.cooldown)
	}
	return nil
}

// None never waits. Tests and dry runs use it.
type None struct{}

// Wait returns immediately unless ctx is already done.
func (None) Wait(ctx context.Context, _ Point) error {
	return ctx.Err()
}

// New builds the pacer described by cfg, filling defaults for zero values.
func New(cfg types.PacingConfig) (Pacer, error) {
	cooldown := orDefault(cfg.ModuleCooldown, DefaultModuleCooldown)
	switch cfg.Mode {
	case types.PacingFixed, "":
		return Fixed{
			SyllabusDelay:  orDefault(cfg.SyllabusDelay, DefaultSyllabusDelay),
			StageDelay:     orDefault(cfg.StageDelay, DefaultStageDelay),
			ModuleCooldown: cooldown,
		}, nil
	case types.PacingTokenBucket:
		return NewTokenBucket(cfg.RequestsPerMinute, cooldown), nil
	default:
		return nil, fmt.Errorf("unknown pacing mode %q", cfg.Mode)
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package ratelimit

import (
	"context"
	"time"
)

// Pacer enforces a fixed delay between successive calls in a sequential
// loop. Unlike Limiter it never bursts: the enrichment pass deliberately
// spaces every network call to stay under provider rate limits, and that
// wait must happen even when the loop is otherwise idle.
type Pacer struct {
	delay time.Duration
	wait  func(ctx context.Context, d time.Duration) error
	first bool
}

// NewPacer creates a pacer with the given inter-call delay.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{
		delay: delay,
		wait:  waitTimer,
		first: true,
	}
}

// NewPacerWithSleep creates a pacer with an injected sleep function.
// Tests use this to observe the waits without slowing down.
func NewPacerWithSleep(delay time.Duration, sleep func(time.Duration)) *Pacer {
	return &Pacer{
		delay: delay,
		wait: func(ctx context.Context, d time.Duration) error {
			sleep(d)
			return ctx.Err()
		},
		first: true,
	}
}

// Wait sleeps for the configured delay, except before the very first call.
// Cancellation is observed both before and during the sleep.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.first {
		p.first = false
		return nil
	}
	if p.delay <= 0 {
		return nil
	}
	return p.wait(ctx, p.delay)
}

// Delay returns the configured inter-call delay.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

func waitTimer(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package backoff implements exponential backoff with jitter for
// reconnect loops.
package backoff

import (
	"context"
	"math/rand"
	"time"
)

// Defaults used by the transports.
const (
	DefaultInitial = 500 * time.Millisecond
	DefaultMax     = 10 * time.Second
)

// Backoff doubles its delay after every Wait, up to a maximum. It is not
// safe for concurrent use.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// New returns a Backoff starting at initial and capped at max.
func New(initial, max time.Duration) *Backoff {
	if initial <= 0 {
		initial = DefaultInitial
	}
	if max < initial {
		max = initial
	}
	return &Backoff{initial: initial, max: max, current: initial}
}

// Next returns the current delay with ±20% jitter and advances the backoff.
func (b *Backoff) Next() time.Duration {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Wait sleeps for Next() or until ctx is done. It reports false if ctx
// ended first.
func (b *Backoff) Wait(ctx context.Context) bool {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Reset returns the delay to its initial value.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the un-jittered delay of the next Wait.
func (b *Backoff) Current() time.Duration {
	return b.current
}

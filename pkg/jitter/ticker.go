// Package jitter provides a ticker whose period varies randomly around a
// base interval.
package jitter

import (
	"context"
	"math/rand/v2"
	"time"
)

// Ticker delivers ticks on C, each one base ± fraction*base after the
// previous tick or Bump. C is closed once the ticker stops.
type Ticker struct {
	C        <-chan time.Time
	c        chan time.Time
	restart  chan struct{}
	cancel   context.CancelFunc
	base     time.Duration
	fraction float64
}

func NewTicker(ctx context.Context, base time.Duration, fraction float64) *Ticker {
	ctx, cancel := context.WithCancel(ctx)
	c := make(chan time.Time)
	t := &Ticker{
		C:        c,
		c:        c,
		restart:  make(chan struct{}, 1),
		cancel:   cancel,
		base:     base,
		fraction: fraction,
	}
	go t.run(ctx)
	return t
}

func (t *Ticker) run(ctx context.Context) {
	defer close(t.c)

	timer := time.NewTimer(Spread(t.base, t.fraction))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.restart:
		case now := <-timer.C:
			select {
			case t.c <- now:
			case <-ctx.Done():
				return
			}
		}
		timer.Reset(Spread(t.base, t.fraction))
	}
}

// Bump starts a fresh period, e.g. after a manual refresh.
func (t *Ticker) Bump() {
	select {
	case t.restart <- struct{}{}:
	default:
	}
}

func (t *Ticker) Stop() { t.cancel() }

// Spread returns a duration drawn uniformly from
// [base-fraction*base, base+fraction*base].
func Spread(base time.Duration, fraction float64) time.Duration {
	window := time.Duration(float64(base) * fraction)
	if window <= 0 {
		return base
	}
	return base - window + time.Duration(rand.Int64N(int64(2*window)+1)) //nolint:gosec
}

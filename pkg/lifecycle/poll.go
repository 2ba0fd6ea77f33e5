package lifecycle

import (
	"context"
	"errors"
	"time"
)

// ErrPollExhausted is returned by Poll when every attempt failed.
var ErrPollExhausted = errors.New("poll attempts exhausted")

// Default reconciliation bounds.
const (
	DefaultPollAttempts = 5
	DefaultPollInterval = 500 * time.Millisecond
)

// Poller repeats a check a bounded number of times at a fixed interval.
type Poller struct {
	Attempts int
	Interval time.Duration
}

// DefaultPoller returns a Poller with the default bounds.
func DefaultPoller() Poller {
	return Poller{Attempts: DefaultPollAttempts, Interval: DefaultPollInterval}
}

// MaxStaleness is the longest a poll can run before giving up.
func (p Poller) MaxStaleness() time.Duration {
	return time.Duration(p.attempts()) * p.Interval
}

// Poll runs check immediately and then every Interval until it returns true
// or Attempts checks were made. It returns the number of checks made. The
// error is nil on success, ErrPollExhausted when every check failed, or the
// context error if ctx ends first.
func (p Poller) Poll(ctx context.Context, check func(attempt int) bool) (int, error) {
	attempts := p.attempts()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if timer == nil {
				timer = time.NewTimer(p.Interval)
			} else {
				timer.Reset(p.Interval)
			}
			select {
			case <-ctx.Done():
				return attempt - 1, ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return 0, err
		}

		if check(attempt) {
			return attempt, nil
		}
	}

	return attempts, ErrPollExhausted
}

func (p Poller) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

type RateLimiter interface {
	Wait(ctx context.Context) error
	Done()
}

// Throttle keeps at least delay between the end of one action and the start
// of the next. Wait returns immediately until Done has been called once.
type Throttle struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{delay: delay}
}

// Wait blocks until delay has passed since the last Done.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	last := t.lastAction
	t.mu.Unlock()

	if last.IsZero() {
		return nil
	}

	if elapsed := time.Since(last); elapsed < t.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.delay - elapsed):
		}
	}

	return nil
}

// Done marks the end of an action.
func (t *Throttle) Done() {
	t.mu.Lock()
	t.lastAction = time.Now()
	t.mu.Unlock()
}

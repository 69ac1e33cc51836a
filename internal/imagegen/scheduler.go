package imagegen

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces provider calls within one batch
type Pacer interface {
	// Wait blocks until the next request may start. The first call returns at once.
	Wait(ctx context.Context) error
	// Done marks the end of a request. The delay before the next one counts from here.
	Done()
	// Backoff blocks for the rate-limit backoff period.
	Backoff(ctx context.Context) error
}

// Scheduler is a token bucket holding one token, refilled every delay.
// The bucket is emptied when a request completes, so slow requests still get
// a full pause after them.
type Scheduler struct {
	limiter *rate.Limiter
	backoff time.Duration
}

func NewScheduler(delay, backoff time.Duration) *Scheduler {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Scheduler{
		limiter: rate.NewLimiter(limit, 1),
		backoff: backoff,
	}
}

func (s *Scheduler) Wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func (s *Scheduler) Done() {
	s.limiter = rate.NewLimiter(s.limiter.Limit(), 1)
	s.limiter.Allow()
}

func (s *Scheduler) Backoff(ctx context.Context) error {
	if s.backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SchedulerFactory builds a fresh Scheduler for each batch
func SchedulerFactory(delay, backoff time.Duration) func() Pacer {
	return func() Pacer {
		return NewScheduler(delay, backoff)
	}
}

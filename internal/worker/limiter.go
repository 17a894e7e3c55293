package worker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out whole-video analyses across the pool. Every worker
// shares one pacer, so the aggregate start rate stays bounded no matter
// how many workers run.
type Pacer struct {
	limiter *rate.Limiter
	delay   time.Duration
}

// NewPacer creates a pacer allowing requestsPerSecond starts with the given
// burst. A non-positive rate or burst falls back to 1.
func NewPacer(requestsPerSecond float64, burst int) *Pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// SetDelay adds a fixed pause after each rate-limit clearance. Useful
// against providers that throttle on sustained request trains rather than
// instantaneous rate.
func (p *Pacer) SetDelay(d time.Duration) {
	p.delay = d
}

// Wait blocks until the next analysis may start.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay):
		}
	}
	return nil
}

// Allow reports whether an analysis could start right now without waiting.
func (p *Pacer) Allow() bool {
	return p.limiter.Allow()
}

package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/intunedeck/intunedeck/internal/config"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"golang.org/x/time/rate"
)

// Limiter bounds outbound write traffic to the remote API. It is a token
// bucket allowing RequestsPerWindow calls per Window, with a shared penalty
// window that opens when the remote service signals throttling. It is safe
// for concurrent use from multiple worker tasks; it never retries calls
// itself.
type Limiter struct {
	limiter *rate.Limiter
	logger  *logger.Logger

	mu           sync.Mutex
	penaltyUntil time.Time
	backoff      *backoff.ExponentialBackOff
}

// NewLimiter builds a limiter from the configured quota.
func NewLimiter(cfg *config.Configuration, log *logger.Logger) *Limiter {
	rl := cfg.RateLimit

	window := rl.Window
	if window <= 0 {
		window = 20 * time.Second
	}
	requests := rl.RequestsPerWindow
	if requests <= 0 {
		requests = 100
	}
	burst := rl.Burst
	if burst <= 0 {
		burst = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	if rl.MaxBackoff > 0 && rl.MaxBackoff < bo.InitialInterval {
		bo.InitialInterval = rl.MaxBackoff
	}
	bo.RandomizationFactor = 0.3
	bo.Multiplier = 2
	bo.MaxInterval = rl.MaxBackoff
	bo.MaxElapsedTime = 0 // the orchestrator bounds attempts, not the clock
	bo.Reset()

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requests)/window.Seconds()), burst),
		logger:  log,
		backoff: bo,
	}
}

// Acquire blocks until the caller may issue the next remote call, honoring
// both the token bucket and any open penalty window. It returns a
// cancellation error if the context ends first.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		wait := time.Until(l.penaltyUntil)
		l.mu.Unlock()

		if wait <= 0 {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ierr.WithError(ctx.Err()).
				WithHint("The operation was cancelled while waiting for a rate-limit slot").
				Mark(ierr.ErrCancelled)
		case <-timer.C:
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("The operation was cancelled while waiting for a rate-limit slot").
			Mark(ierr.ErrCancelled)
	}
	return nil
}

// ReportThrottled records a remote throttling signal and returns the delay
// the caller should wait before requeueing the same write. The server's
// Retry-After wins when present; otherwise the delay grows exponentially
// with jitter across consecutive signals.
func (l *Limiter) ReportThrottled(retryAfter time.Duration) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	delay := retryAfter
	if delay <= 0 {
		delay = l.backoff.NextBackOff()
		if delay == backoff.Stop {
			delay = l.backoff.MaxInterval
		}
	} else {
		// small jitter so concurrent workers do not stampede in lockstep
		delay += time.Duration(rand.Int63n(int64(time.Second)))
	}

	until := time.Now().Add(delay)
	if until.After(l.penaltyUntil) {
		l.penaltyUntil = until
	}

	l.logger.Warnw("remote throttling signal, backing off",
		"delay", delay.String(),
	)
	return delay
}

// ReportSuccess resets the backoff schedule after a successful call.
func (l *Limiter) ReportSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoff.Reset()
}

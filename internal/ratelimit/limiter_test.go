package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/intunedeck/intunedeck/internal/config"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, requests int, window time.Duration, burst int) *Limiter {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.RateLimit.RequestsPerWindow = requests
	cfg.RateLimit.Window = window
	cfg.RateLimit.Burst = burst

	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	return NewLimiter(cfg, log)
}

func TestAcquireRespectsQuota(t *testing.T) {
	// 10 per 100ms with burst 1: acquiring 3 slots must take at least
	// two inter-arrival periods (~20ms).
	l := newTestLimiter(t, 10, 100*time.Millisecond, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestAcquireHonorsCancellation(t *testing.T) {
	l := newTestLimiter(t, 1, time.Hour, 1)

	// drain the single burst slot
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, ierr.IsCancelled(err))
}

func TestReportThrottledOpensPenaltyWindow(t *testing.T) {
	l := newTestLimiter(t, 1000, time.Second, 100)

	delay := l.ReportThrottled(50 * time.Millisecond)
	assert.GreaterOrEqual(t, delay, 50*time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Acquire(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestReportThrottledGrowsWithoutRetryAfter(t *testing.T) {
	l := newTestLimiter(t, 1000, time.Second, 100)

	first := l.ReportThrottled(0)
	second := l.ReportThrottled(0)

	assert.Greater(t, first, time.Duration(0))
	// exponential schedule: the second delay is drawn from a larger interval
	assert.Greater(t, second, first/2)

	l.ReportSuccess()
	reset := l.ReportThrottled(0)
	assert.Less(t, reset, 3*time.Second)
}

func TestConcurrentAcquire(t *testing.T) {
	l := newTestLimiter(t, 1000, time.Second, 100)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Acquire(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

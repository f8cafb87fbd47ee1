package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HueCodes/Scuttle/internal/errors"
)

func TestNewRejectsNonPositiveRate(t *testing.T) {
	for _, rate := range []int{0, -1, -100} {
		_, err := New(rate)
		require.Error(t, err, "rate %d should be rejected", rate)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	}
}

func TestNew(t *testing.T) {
	limiter, err := New(250)
	require.NoError(t, err)
	assert.Equal(t, 250, limiter.Rate())
}

func TestTryAcquire(t *testing.T) {
	limiter, err := New(1)
	require.NoError(t, err)

	// Burst of one: the first token is available immediately, the
	// second is not.
	assert.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire())
}

func TestTryAcquireBurst(t *testing.T) {
	limiter, err := NewWithBurst(1, 5)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.TryAcquire(), "token %d should be available in the burst", i)
	}
	assert.False(t, limiter.TryAcquire())
}

func TestWaitEnforcesRate(t *testing.T) {
	// 100 ops/sec: 20 acquisitions past the initial token need at
	// least ~190ms of accumulated waiting.
	limiter, err := New(100)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 21; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond, "rate limit was not enforced")
	assert.Less(t, elapsed, 2*time.Second, "rate limit far slower than configured")
}

func TestWaitHonorsCancellation(t *testing.T) {
	limiter, err := New(1)
	require.NoError(t, err)
	require.True(t, limiter.TryAcquire())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Package ratelimit throttles probe issuance with a token bucket.
// A single limiter is shared by every concurrent probe task in a scan
// job, putting a ceiling on how fast packets leave the host regardless
// of the concurrency cap.
package ratelimit

import (
	"context"

	"github.com/HueCodes/Scuttle/internal/errors"
	"golang.org/x/time/rate"
)

// Limiter is a token-bucket rate limiter. Tokens accumulate at the
// configured per-second rate up to the burst capacity and each probe
// consumes one. Safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
	ops     int
}

// New creates a limiter allowing opsPerSec operations per second with a
// burst of one. A rate of zero or less is rejected; callers that want
// no limiting should omit the limiter entirely rather than construct
// one with rate zero.
func New(opsPerSec int) (*Limiter, error) {
	return NewWithBurst(opsPerSec, 1)
}

// NewWithBurst creates a limiter with an explicit burst allowance
// beyond the steady rate.
func NewWithBurst(opsPerSec, burst int) (*Limiter, error) {
	if opsPerSec <= 0 {
		return nil, errors.Newf(errors.CodeValidation, "rate limit must be positive, got %d", opsPerSec)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(opsPerSec), burst),
		ops:     opsPerSec,
	}, nil
}

// Wait blocks the calling probe task until a token is available, then
// consumes it. Concurrent callers serialize fairly on token
// availability. Returns the context's error if it is canceled first.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// TryAcquire consumes a token if one is immediately available, without
// waiting. Reports whether a token was consumed.
func (l *Limiter) TryAcquire() bool {
	return l.limiter.Allow()
}

// Rate returns the configured operations per second.
func (l *Limiter) Rate() int {
	return l.ops
}

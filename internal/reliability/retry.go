package reliability

import (
	"context"
	"math"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
)

// BackoffStrategy selects the delay formula between retry attempts.
type BackoffStrategy int

const (
	FixedDelay BackoffStrategy = iota
	Exponential
	Linear
)

// RetryConfig tunes attempt count and inter-attempt delay.
type RetryConfig struct {
	MaxAttempts       int
	Strategy          BackoffStrategy
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns sane exponential-backoff defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		Strategy:          Exponential,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// delayForAttempt computes the delay before attempt i (0-indexed, the
// delay preceding that attempt's retry).
func (c RetryConfig) delayForAttempt(i int) time.Duration {
	var d time.Duration
	switch c.Strategy {
	case Exponential:
		mult := c.BackoffMultiplier
		if mult <= 0 {
			mult = 2.0
		}
		d = time.Duration(float64(c.InitialDelay) * math.Pow(mult, float64(i)))
	case Linear:
		d = c.InitialDelay * time.Duration(i+1)
	default:
		d = c.InitialDelay
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// RetryFunc is the operation retried by Retry.
type RetryFunc func(ctx context.Context, attempt int) error

// Retry runs fn up to cfg.MaxAttempts times, sleeping between
// attempts per cfg's backoff strategy. It does not retry when the
// returned error is a non-transient *errs.Info (see errs.IsNonTransient);
// such errors are returned immediately. The context's cancellation
// aborts the wait between attempts.
func Retry(ctx context.Context, cfg RetryConfig, fn RetryFunc) error {
	var lastErr error
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		lastErr = fn(ctx, i)
		if lastErr == nil {
			return nil
		}
		if info, ok := lastErr.(*errs.Info); ok && errs.IsNonTransient(info.Kind) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.delayForAttempt(i)):
		}
	}
	return lastErr
}

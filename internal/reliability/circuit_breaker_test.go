package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour, SuccessThreshold: 1})
	failing := func(ctx context.Context) error { return errors.New("boom") }

	require.Error(t, cb.Execute(context.Background(), failing, nil))
	assert.Equal(t, StateClosed, cb.State())
	require.Error(t, cb.Execute(context.Background(), failing, nil))
	assert.Equal(t, StateOpen, cb.State())
}

func TestOpenRejectsImmediatelyWithoutFallback(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour, SuccessThreshold: 1})
	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("x") }, nil))

	var called bool
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	}, nil)
	require.Error(t, err)
	assert.False(t, called)
}

func TestOpenInvokesFallbackInstead(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour, SuccessThreshold: 1})
	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("x") }, nil))

	err := cb.Execute(context.Background(), func(ctx context.Context) error { return nil }, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
}

func TestHalfOpenClosesAfterSuccessThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Millisecond, SuccessThreshold: 2})
	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("x") }, nil))
	time.Sleep(5 * time.Millisecond)

	ok := func(ctx context.Context) error { return nil }
	require.NoError(t, cb.Execute(context.Background(), ok, nil))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(context.Background(), ok, nil))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenReopensOnAnyFailure(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Millisecond, SuccessThreshold: 3})
	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("x") }, nil))
	time.Sleep(5 * time.Millisecond)

	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("x") }, nil))
	assert.Equal(t, StateOpen, cb.State())
}

func TestMetricsTrackCallCounters(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour, SuccessThreshold: 1})
	require.NoError(t, cb.Execute(context.Background(), func(ctx context.Context) error { return nil }, nil))
	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("x") }, nil))

	// Breaker is now Open; this call is rejected rather than admitted.
	require.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error { return nil }, nil))

	m := cb.Metrics()
	assert.EqualValues(t, 3, m.TotalCalls)
	assert.EqualValues(t, 1, m.SuccessfulCalls)
	assert.EqualValues(t, 1, m.FailedCalls)
	assert.EqualValues(t, 1, m.RejectedCalls)
	assert.Equal(t, m.TotalCalls, m.SuccessfulCalls+m.FailedCalls+m.RejectedCalls)
}

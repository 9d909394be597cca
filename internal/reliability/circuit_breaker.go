// Package reliability implements the circuit breaker, retry policy,
// and error boundary primitives, generalized from the teacher's
// engine-level retry/circuit-breaker helper into standalone,
// independently composable guards.
package reliability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
)

// CircuitState is a point in the breaker's Closed/Open/HalfOpen cycle.
type CircuitState int32

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Closed"
	}
}

// CircuitBreakerConfig tunes the Closed<->Open<->HalfOpen cycle.
type CircuitBreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	SuccessThreshold int
}

// CircuitBreakerMetrics is a point-in-time snapshot of call counters.
type CircuitBreakerMetrics struct {
	TotalCalls       uint64
	SuccessfulCalls  uint64
	FailedCalls      uint64
	RejectedCalls    uint64
	StateTransitions uint64
}

// CircuitBreaker rejects calls while Open, tentatively admits calls
// while HalfOpen, and reopens on the first HalfOpen failure.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu                  sync.Mutex
	state               CircuitState
	consecutiveFailures int
	consecutiveSuccess  int
	openedAt            time.Time

	totalCalls       atomic.Uint64
	successfulCalls  atomic.Uint64
	failedCalls      atomic.Uint64
	rejectedCalls    atomic.Uint64
	stateTransitions atomic.Uint64
}

// NewCircuitBreaker creates a CircuitBreaker starting in the Closed
// state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg}
}

// State returns the breaker's current state, transitioning Open to
// HalfOpen first if ResetTimeout has elapsed.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpenLocked()
	return b.state
}

func (b *CircuitBreaker) maybeHalfOpenLocked() {
	if b.state == StateOpen && time.Since(b.openedAt) >= b.cfg.ResetTimeout {
		b.transitionLocked(StateHalfOpen)
	}
}

func (b *CircuitBreaker) transitionLocked(to CircuitState) {
	if b.state == to {
		return
	}
	b.state = to
	b.consecutiveFailures = 0
	b.consecutiveSuccess = 0
	if to == StateOpen {
		b.openedAt = time.Now()
	}
	b.stateTransitions.Add(1)
}

// Execute runs fn if the breaker admits the call. If the breaker is
// Open, fallback (if non-nil) is invoked instead of fn and its result
// returned; with no fallback, Execute returns CircuitBreakerOpen
// immediately.
func (b *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error, fallback func(ctx context.Context) error) error {
	b.totalCalls.Add(1)

	b.mu.Lock()
	b.maybeHalfOpenLocked()
	if b.state == StateOpen {
		b.mu.Unlock()
		b.rejectedCalls.Add(1)
		if fallback != nil {
			return fallback(ctx)
		}
		return errs.New(errs.CircuitBreakerOpen, "reliability.CircuitBreaker.Execute", "circuit breaker is open")
	}
	b.mu.Unlock()

	err := fn(ctx)
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *CircuitBreaker) recordFailure() {
	b.failedCalls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.transitionLocked(StateOpen)
	case StateClosed:
		b.consecutiveFailures++
		if b.cfg.FailureThreshold > 0 && b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.transitionLocked(StateOpen)
		}
	}
}

func (b *CircuitBreaker) recordSuccess() {
	b.successfulCalls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.consecutiveSuccess++
		if b.cfg.SuccessThreshold <= 0 || b.consecutiveSuccess >= b.cfg.SuccessThreshold {
			b.transitionLocked(StateClosed)
		}
	case StateClosed:
		b.consecutiveFailures = 0
	}
}

// Metrics returns a snapshot of the breaker's call counters.
func (b *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	return CircuitBreakerMetrics{
		TotalCalls:       b.totalCalls.Load(),
		SuccessfulCalls:  b.successfulCalls.Load(),
		FailedCalls:      b.failedCalls.Load(),
		RejectedCalls:    b.rejectedCalls.Load(),
		StateTransitions: b.stateTransitions.Load(),
	}
}

package reliability

import (
	"context"
	"sync"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
)

// DegradationLevel reflects how far over threshold a boundary's
// failure count currently sits.
type DegradationLevel int

const (
	DegradationNone DegradationLevel = iota
	DegradationLow
	DegradationMedium
	DegradationHigh
	DegradationCritical
)

func (d DegradationLevel) String() string {
	switch d {
	case DegradationLow:
		return "Low"
	case DegradationMedium:
		return "Medium"
	case DegradationHigh:
		return "High"
	case DegradationCritical:
		return "Critical"
	default:
		return "None"
	}
}

// ErrorBoundaryConfig tunes the sliding failure window and the
// degradation ceiling.
type ErrorBoundaryConfig struct {
	ErrorThreshold      int
	ErrorWindow         time.Duration
	MaxDegradationLevel DegradationLevel
}

// ErrorHandler is invoked once a boundary has crossed its threshold;
// it receives the current degradation level.
type ErrorHandler func(ctx context.Context, level DegradationLevel)

// ErrorBoundary counts failures within a sliding time window and,
// once the count reaches ErrorThreshold, invokes a registered handler
// on each further failing call with a degradation level derived from
// how far over threshold the window's count sits. Calls that succeed
// always run fn and return nil; the handler is not invoked for them.
type ErrorBoundary struct {
	cfg     ErrorBoundaryConfig
	handler ErrorHandler

	mu       sync.Mutex
	failures []time.Time
}

// NewErrorBoundary creates an ErrorBoundary bound to cfg and handler.
func NewErrorBoundary(cfg ErrorBoundaryConfig, handler ErrorHandler) *ErrorBoundary {
	return &ErrorBoundary{cfg: cfg, handler: handler}
}

// Execute runs fn, recording any failure into the sliding window. If
// the window's failure count has reached ErrorThreshold, the
// registered handler is invoked with the current degradation level
// and the call returns ErrorBoundaryTriggered instead of fn's error.
func (b *ErrorBoundary) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}

	count, level := b.recordFailure()
	if count < b.cfg.ErrorThreshold {
		return err
	}

	if b.handler != nil {
		b.handler(ctx, level)
	}
	return errs.New(errs.ErrorBoundaryTriggered, "reliability.ErrorBoundary.Execute", "error boundary triggered")
}

func (b *ErrorBoundary) recordFailure() (int, DegradationLevel) {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = append(b.failures, now)
	cutoff := now.Add(-b.cfg.ErrorWindow)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = kept

	count := len(b.failures)
	return count, b.degradationLevel(count)
}

func (b *ErrorBoundary) degradationLevel(count int) DegradationLevel {
	if b.cfg.ErrorThreshold <= 0 {
		return DegradationNone
	}
	ratio := float64(count) / float64(b.cfg.ErrorThreshold)
	var level DegradationLevel
	switch {
	case ratio >= 4:
		level = DegradationCritical
	case ratio >= 3:
		level = DegradationHigh
	case ratio >= 2:
		level = DegradationMedium
	case ratio >= 1:
		level = DegradationLow
	default:
		level = DegradationNone
	}
	if b.cfg.MaxDegradationLevel != DegradationNone && level > b.cfg.MaxDegradationLevel {
		level = b.cfg.MaxDegradationLevel
	}
	return level
}

// FailureCount returns the number of failures currently within the
// sliding window.
func (b *ErrorBoundary) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.failures)
}

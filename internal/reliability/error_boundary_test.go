package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBoundaryPassesThroughBelowThreshold(t *testing.T) {
	eb := NewErrorBoundary(ErrorBoundaryConfig{ErrorThreshold: 3, ErrorWindow: time.Hour}, nil)
	err := eb.Execute(context.Background(), func(ctx context.Context) error { return errors.New("boom") })
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "ErrorBoundaryTriggered")
}

func TestErrorBoundaryTriggersHandlerAtThreshold(t *testing.T) {
	var gotLevel DegradationLevel
	var calls int
	eb := NewErrorBoundary(ErrorBoundaryConfig{ErrorThreshold: 2, ErrorWindow: time.Hour}, func(ctx context.Context, level DegradationLevel) {
		calls++
		gotLevel = level
	})

	failing := func(ctx context.Context) error { return errors.New("boom") }
	require.Error(t, eb.Execute(context.Background(), failing))
	err := eb.Execute(context.Background(), failing)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, DegradationLow, gotLevel)
}

func TestErrorBoundaryDegradationScalesWithRatio(t *testing.T) {
	var levels []DegradationLevel
	eb := NewErrorBoundary(ErrorBoundaryConfig{ErrorThreshold: 1, ErrorWindow: time.Hour}, func(ctx context.Context, level DegradationLevel) {
		levels = append(levels, level)
	})

	failing := func(ctx context.Context) error { return errors.New("boom") }
	for i := 0; i < 4; i++ {
		_ = eb.Execute(context.Background(), failing)
	}
	require.Len(t, levels, 4)
	assert.Equal(t, DegradationLow, levels[0])
	assert.Equal(t, DegradationCritical, levels[3])
}

func TestErrorBoundaryCapsAtMaxDegradation(t *testing.T) {
	var levels []DegradationLevel
	eb := NewErrorBoundary(ErrorBoundaryConfig{ErrorThreshold: 1, ErrorWindow: time.Hour, MaxDegradationLevel: DegradationMedium}, func(ctx context.Context, level DegradationLevel) {
		levels = append(levels, level)
	})

	failing := func(ctx context.Context) error { return errors.New("boom") }
	for i := 0; i < 4; i++ {
		_ = eb.Execute(context.Background(), failing)
	}
	assert.Equal(t, DegradationMedium, levels[len(levels)-1])
}

func TestErrorBoundaryWindowExpiresOldFailures(t *testing.T) {
	eb := NewErrorBoundary(ErrorBoundaryConfig{ErrorThreshold: 2, ErrorWindow: 20 * time.Millisecond}, nil)
	failing := func(ctx context.Context) error { return errors.New("boom") }

	_ = eb.Execute(context.Background(), failing)
	time.Sleep(30 * time.Millisecond)
	_ = eb.Execute(context.Background(), failing)

	assert.Equal(t, 1, eb.FailureCount())
}

func TestErrorBoundarySuccessDoesNotAffectWindow(t *testing.T) {
	eb := NewErrorBoundary(ErrorBoundaryConfig{ErrorThreshold: 5, ErrorWindow: time.Hour}, nil)
	require.NoError(t, eb.Execute(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, 0, eb.FailureCount())
}

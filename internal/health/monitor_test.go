package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func healthyCheck(ctx context.Context) Result { return Result{Status: StatusHealthy} }

func unhealthyCheck(ctx context.Context) Result { return Result{Status: StatusUnhealthy, Message: "down"} }

func TestCheckAllUsesCacheWithinWindow(t *testing.T) {
	m := NewMonitor(time.Hour)
	var calls int32
	m.Register(Registration{Name: "a", Type: CheckLiveness, Check: func(ctx context.Context) Result {
		atomic.AddInt32(&calls, 1)
		return Result{Status: StatusHealthy}
	}})

	m.CheckAll(context.Background())
	m.CheckAll(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRefreshForcesReevaluation(t *testing.T) {
	m := NewMonitor(time.Hour)
	var calls int32
	m.Register(Registration{Name: "a", Check: func(ctx context.Context) Result {
		atomic.AddInt32(&calls, 1)
		return Result{Status: StatusHealthy}
	}})

	m.Refresh(context.Background())
	m.Refresh(context.Background())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestCheckExceedingTimeoutYieldsUnhealthy(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.Register(Registration{
		Name:    "slow",
		Timeout: 5 * time.Millisecond,
		Check: func(ctx context.Context) Result {
			time.Sleep(50 * time.Millisecond)
			return Result{Status: StatusHealthy}
		},
	})

	res := m.Refresh(context.Background())
	assert.Equal(t, StatusUnhealthy, res["slow"].Status)
	assert.Equal(t, "timeout", res["slow"].Message)
}

func TestOverallStatusUnhealthyDominates(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.Register(Registration{Name: "a", Check: healthyCheck})
	m.Register(Registration{Name: "b", Check: unhealthyCheck})

	results := m.Refresh(context.Background())
	assert.Equal(t, StatusUnhealthy, m.OverallStatus(results))
}

func TestOverallStatusDegradedWhenNoUnhealthy(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.Register(Registration{Name: "a", Check: healthyCheck})
	m.Register(Registration{Name: "b", Check: func(ctx context.Context) Result {
		return Result{Status: StatusDegraded}
	}})

	results := m.Refresh(context.Background())
	assert.Equal(t, StatusDegraded, m.OverallStatus(results))
}

func TestOverallStatusUnknownOnlyWhenNothingHealthy(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.Register(Registration{Name: "a", Check: func(ctx context.Context) Result {
		return Result{Status: StatusUnknown}
	}})

	results := m.Refresh(context.Background())
	assert.Equal(t, StatusUnknown, m.OverallStatus(results))
}

func TestCriticalCheckForcesUnhealthyRegardless(t *testing.T) {
	m := NewMonitor(time.Hour)
	m.Register(Registration{Name: "critical", Critical: true, Check: unhealthyCheck})
	m.Register(Registration{Name: "other", Check: healthyCheck})

	results := m.Refresh(context.Background())
	assert.Equal(t, StatusUnhealthy, m.OverallStatus(results))
}

func TestRecoveryHandlerInvokedOnUnhealthy(t *testing.T) {
	m := NewMonitor(50 * time.Millisecond)
	m.Register(Registration{Name: "a", Check: unhealthyCheck})

	var attempts int32
	m.OnRecovery("a", func(ctx context.Context) bool {
		atomic.AddInt32(&attempts, 1)
		return true
	})

	m.Refresh(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestRecoveryHandlerRateLimitedPerCacheWindow(t *testing.T) {
	m := NewMonitor(100 * time.Millisecond)
	m.Register(Registration{Name: "a", Check: unhealthyCheck})

	var attempts int32
	m.OnRecovery("a", func(ctx context.Context) bool {
		atomic.AddInt32(&attempts, 1)
		return true
	})

	m.Refresh(context.Background())
	m.Refresh(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))

	time.Sleep(120 * time.Millisecond)
	m.Refresh(context.Background())
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

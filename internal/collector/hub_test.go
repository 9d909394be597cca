package collector

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcenon/threadmon/internal/metrics"
)

type fakePlugin struct {
	name    string
	values  []float64
	idx     int
	failing bool
}

func (f *fakePlugin) Initialize(map[string]string) error { return nil }
func (f *fakePlugin) Name() string                       { return f.name }
func (f *fakePlugin) MetricTypes() []metrics.Type         { return []metrics.Type{metrics.TypeGauge} }
func (f *fakePlugin) IsHealthy() bool                     { return !f.failing }
func (f *fakePlugin) Statistics() map[string]float64      { return nil }

func (f *fakePlugin) Collect() ([]metrics.Metric, error) {
	if f.failing {
		return nil, assert.AnError
	}
	v := f.values[f.idx%len(f.values)]
	f.idx++
	return []metrics.Metric{metrics.NewMetric(f.name, metrics.TypeGauge, v, nil)}, nil
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	h := New(Config{})
	require.NoError(t, h.Register(&fakePlugin{name: "cpu", values: []float64{1}}))
	err := h.Register(&fakePlugin{name: "cpu", values: []float64{1}})
	require.Error(t, err)
}

func TestCollectOnceCachesMetricsAndPublishes(t *testing.T) {
	h := New(Config{})
	require.NoError(t, h.Register(&fakePlugin{name: "cpu", values: []float64{42}}))

	var received int32
	h.Subscribe(&Observer{
		Alive:  func() bool { return true },
		Notify: func(MetricEvent) { atomic.AddInt32(&received, 1) },
	})

	h.collectOnce()

	assert.Equal(t, 1, h.CacheSize())
	assert.EqualValues(t, 1, atomic.LoadInt32(&received))
}

func TestCollectOnceSkipsFailingPluginWithoutAbortingOthers(t *testing.T) {
	h := New(Config{})
	require.NoError(t, h.Register(&fakePlugin{name: "bad", failing: true}))
	require.NoError(t, h.Register(&fakePlugin{name: "good", values: []float64{1}}))

	h.collectOnce()

	assert.Equal(t, 1, h.CacheSize())
	assert.EqualValues(t, 1, h.CollectionErrors())
}

func TestPurgeExpiredEvictsOldEntries(t *testing.T) {
	h := New(Config{CacheTTL: time.Millisecond})
	require.NoError(t, h.Register(&fakePlugin{name: "cpu", values: []float64{1}}))

	h.collectOnce()
	require.Equal(t, 1, h.CacheSize())

	time.Sleep(5 * time.Millisecond)
	h.collectOnce()
	h.cacheMu.Lock()
	h.purgeExpiredLocked(time.Now())
	h.cacheMu.Unlock()

	assert.LessOrEqual(t, h.CacheSize(), 1)
}

func TestAggregateComputesCountSumMinMaxMean(t *testing.T) {
	h := New(Config{AggregationWindow: time.Hour})
	p := &fakePlugin{name: "cpu", values: []float64{10, 20, 30}}
	require.NoError(t, h.Register(p))

	h.collectOnce()
	h.collectOnce()
	h.collectOnce()

	agg := h.Aggregate()["cpu"]
	assert.EqualValues(t, 3, agg.Count)
	assert.InDelta(t, 60, agg.Sum, 0.001)
	assert.InDelta(t, 10, agg.Min, 0.001)
	assert.InDelta(t, 30, agg.Max, 0.001)
	assert.InDelta(t, 20, agg.Mean, 0.001)
}

func TestDeadObserverIsPrunedOnPublish(t *testing.T) {
	h := New(Config{})
	require.NoError(t, h.Register(&fakePlugin{name: "cpu", values: []float64{1}}))

	alive := int32(1)
	var calls int32
	h.Subscribe(&Observer{
		Alive:  func() bool { return atomic.LoadInt32(&alive) == 1 },
		Notify: func(MetricEvent) { atomic.AddInt32(&calls, 1) },
	})

	h.collectOnce()
	atomic.StoreInt32(&alive, 0)
	h.collectOnce()

	assert.Len(t, h.observers, 0)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestStartStopRunsWorkers(t *testing.T) {
	h := New(Config{CollectionInterval: 2 * time.Millisecond, WorkerThreads: 2})
	p := &fakePlugin{name: "cpu", values: []float64{1}}
	require.NoError(t, h.Register(p))

	h.Start()
	time.Sleep(20 * time.Millisecond)
	h.Stop()

	assert.Greater(t, h.CacheSize(), 0)
}

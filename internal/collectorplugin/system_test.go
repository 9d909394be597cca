package collectorplugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPluginNameAndTypes(t *testing.T) {
	p := NewSystemPlugin("/")
	assert.Equal(t, "system", p.Name())
	assert.NotEmpty(t, p.MetricTypes())
}

func TestSystemPluginInitializeOverridesDiskPath(t *testing.T) {
	p := NewSystemPlugin("/")
	require.NoError(t, p.Initialize(map[string]string{"disk_path": "/tmp"}))
	assert.Equal(t, "/tmp", p.diskPath)
}

func TestSystemPluginInitializeIgnoresEmptyOverride(t *testing.T) {
	p := NewSystemPlugin("/")
	require.NoError(t, p.Initialize(map[string]string{}))
	assert.Equal(t, "/", p.diskPath)
}

func TestSystemPluginCollectReturnsMetrics(t *testing.T) {
	p := NewSystemPlugin("/")
	metrics, err := p.Collect()
	require.NoError(t, err)
	assert.NotEmpty(t, metrics)

	names := make(map[string]bool)
	for _, m := range metrics {
		names[m.Name] = true
	}
	assert.True(t, names["runtime_goroutines"])
	assert.True(t, names["runtime_heap_alloc_mb"])
}

func TestSystemPluginIsHealthyAfterSuccessfulCollect(t *testing.T) {
	p := NewSystemPlugin("/")
	_, err := p.Collect()
	require.NoError(t, err)
	assert.True(t, p.IsHealthy())
}

func TestSystemPluginStatisticsReportsGoroutines(t *testing.T) {
	p := NewSystemPlugin("/")
	stats := p.Statistics()
	assert.Contains(t, stats, "goroutines")
}

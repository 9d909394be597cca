// Package collectorplugin provides the concrete collector.Plugin
// implementations shipped with the pool: a host-resource collector
// adapted from the gopsutil-backed system sampling used throughout
// the ambient monitoring stack.
package collectorplugin

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/kcenon/threadmon/internal/metrics"
)

// SystemPlugin samples CPU, memory, disk, network, and Go runtime
// metrics on each Collect call.
type SystemPlugin struct {
	diskPath    string
	sampleError error
}

// NewSystemPlugin creates a SystemPlugin that samples disk usage at
// diskPath (use "/" for the root filesystem).
func NewSystemPlugin(diskPath string) *SystemPlugin {
	return &SystemPlugin{diskPath: diskPath}
}

// Initialize accepts an optional "disk_path" override.
func (p *SystemPlugin) Initialize(config map[string]string) error {
	if path, ok := config["disk_path"]; ok && path != "" {
		p.diskPath = path
	}
	return nil
}

// Name identifies this plugin in the collector hub's registry.
func (p *SystemPlugin) Name() string { return "system" }

// MetricTypes reports the metric types this plugin can emit.
func (p *SystemPlugin) MetricTypes() []metrics.Type {
	return []metrics.Type{metrics.TypeGauge}
}

// IsHealthy reports whether the most recent Collect succeeded.
func (p *SystemPlugin) IsHealthy() bool { return p.sampleError == nil }

// Statistics reports a small summary the hub can surface without a
// full Collect cycle.
func (p *SystemPlugin) Statistics() map[string]float64 {
	return map[string]float64{
		"goroutines": float64(runtime.NumGoroutine()),
	}
}

// Collect samples the host and Go runtime, returning one gauge metric
// per signal. A failure to sample any single source is recorded but
// does not abort the remaining samples.
func (p *SystemPlugin) Collect() ([]metrics.Metric, error) {
	var out []metrics.Metric
	p.sampleError = nil

	if percent, err := cpu.Percent(time.Second, false); err == nil && len(percent) > 0 {
		out = append(out, metrics.NewMetric("system_cpu_usage_percent", metrics.TypeGauge, percent[0], nil))
	} else if err != nil {
		p.sampleError = err
	}
	out = append(out, metrics.NewMetric("runtime_goroutines", metrics.TypeGauge, float64(runtime.NumGoroutine()), nil))

	if vm, err := mem.VirtualMemory(); err == nil {
		out = append(out, metrics.NewMetric("system_memory_usage_percent", metrics.TypeGauge, vm.UsedPercent, nil))
	} else {
		p.sampleError = err
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	out = append(out, metrics.NewMetric("runtime_heap_alloc_mb", metrics.TypeGauge, float64(memStats.HeapAlloc)/(1024*1024), nil))

	if usage, err := disk.Usage(p.diskPath); err == nil {
		out = append(out, metrics.NewMetric("system_disk_usage_percent", metrics.TypeGauge, usage.UsedPercent, nil))
	} else {
		p.sampleError = err
	}

	if stats, err := net.IOCounters(false); err == nil && len(stats) > 0 {
		out = append(out, metrics.NewMetric("system_network_rx_bytes", metrics.TypeCounter, float64(stats[0].BytesRecv), nil))
		out = append(out, metrics.NewMetric("system_network_tx_bytes", metrics.TypeCounter, float64(stats[0].BytesSent), nil))
	} else if err != nil {
		p.sampleError = err
	}

	return out, p.sampleError
}

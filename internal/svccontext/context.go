package svccontext

import (
	"time"
)

// LogLevel mirrors the level set the Logger interface accepts.
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
	LevelTrace
)

// Logger is the minimal logging seam a Context carries. Concrete
// implementations (see internal/logger) wrap a structured logger;
// the null-object Logger discards everything.
type Logger interface {
	Log(level LogLevel, message string)
	LogWithLocation(level LogLevel, message, file string, line int, function string)
	IsEnabled(level LogLevel) bool
	Flush()
}

type nopLogger struct{}

func (nopLogger) Log(LogLevel, string)                                  {}
func (nopLogger) LogWithLocation(LogLevel, string, string, int, string) {}
func (nopLogger) IsEnabled(LogLevel) bool                               { return false }
func (nopLogger) Flush()                                                {}

// NopLogger returns the default null-object Logger.
func NopLogger() Logger { return nopLogger{} }

// SystemMetrics is a point-in-time host resource sample.
type SystemMetrics struct {
	CPUPercent    float64
	MemoryUsedPct float64
	Goroutines    int
	SampledAt     time.Time
}

// PoolMetrics is a point-in-time snapshot of one TypedThreadPool.
type PoolMetrics struct {
	PoolID        string
	TotalWorkers  int
	ActiveWorkers int
	IdleWorkers   int
	QueuedJobs    int
	CompletedJobs uint64
	FailedJobs    uint64
	SampledAt     time.Time
}

// WorkerMetrics is a point-in-time snapshot of one worker.
type WorkerMetrics struct {
	WorkerID     string
	JobsHandled  uint64
	JobsFailed   uint64
	AvgRunMicros float64
	SampledAt    time.Time
}

// MetricsSnapshot is the aggregate a MonitoringSink hands to exporters.
type MetricsSnapshot struct {
	System  SystemMetrics
	Pools   map[string]PoolMetrics
	Workers map[string]WorkerMetrics
	TakenAt time.Time
}

// MonitoringSink is the metrics-reporting seam a Context carries. The
// null-object MonitoringSink records nothing and reports itself
// inactive.
type MonitoringSink interface {
	UpdateSystemMetrics(SystemMetrics)
	UpdatePoolMetrics(PoolMetrics)
	UpdateWorkerMetrics(workerID string, metrics WorkerMetrics)
	CurrentSnapshot() MetricsSnapshot
	IsActive() bool
}

type nopSink struct{}

func (nopSink) UpdateSystemMetrics(SystemMetrics)         {}
func (nopSink) UpdatePoolMetrics(PoolMetrics)              {}
func (nopSink) UpdateWorkerMetrics(string, WorkerMetrics)  {}
func (nopSink) CurrentSnapshot() MetricsSnapshot           { return MetricsSnapshot{} }
func (nopSink) IsActive() bool                             { return false }

// NopMonitoringSink returns the default null-object MonitoringSink.
func NopMonitoringSink() MonitoringSink { return nopSink{} }

// Context is the immutable value every pool and worker carries. It
// never owns its Logger/MonitoringSink exclusively: callers clone it
// to share the same underlying services across multiple pools.
type Context struct {
	Title  string
	ID     string
	Logger Logger
	Sink   MonitoringSink
}

// New builds a Context with explicit dependencies, substituting
// null objects for any nil field.
func New(title, id string, logger Logger, sink MonitoringSink) Context {
	if logger == nil {
		logger = NopLogger()
	}
	if sink == nil {
		sink = NopMonitoringSink()
	}
	return Context{Title: title, ID: id, Logger: logger, Sink: sink}
}

// FromGlobalContainer resolves "logger" and "monitoring_sink" from the
// global Container, falling back to null objects for whichever is
// absent.
func FromGlobalContainer(title, id string) Context {
	var logger Logger
	if v, err := global.Get("logger"); err == nil {
		logger, _ = v.(Logger)
	}
	var sink MonitoringSink
	if v, err := global.Get("monitoring_sink"); err == nil {
		sink, _ = v.(MonitoringSink)
	}
	return New(title, id, logger, sink)
}

// Clone returns a shallow copy sharing the same Logger/MonitoringSink,
// for a new pool that wants its own Title/ID but the same services.
func (c Context) Clone(title, id string) Context {
	c.Title = title
	c.ID = id
	return c
}

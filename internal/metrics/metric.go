// Package metrics implements the metric record shape and the
// Counter/Gauge/Histogram/Summary/Timer/Set aggregators built on it.
package metrics

import (
	"hash/fnv"
	"time"
)

// Type identifies the tagged variant a Metric record carries.
type Type int

const (
	TypeCounter Type = iota
	TypeGauge
	TypeHistogram
	TypeSummary
	TypeTimer
	TypeSet
)

// Metric is the wire-shape record: a name hash and type, the tags, a
// float64 value (integer and string values are not represented) and a
// microsecond timestamp.
type Metric struct {
	NameHash  uint64
	Name      string
	Type      Type
	Tags      map[string]string
	Value     float64
	Histogram *Histogram
	Summary   *Summary
	TimestampUs int64
}

// NewMetric builds a Metric, computing the FNV-1a name hash and
// stamping the current time in microseconds.
func NewMetric(name string, typ Type, value float64, tags map[string]string) Metric {
	return Metric{
		NameHash:    HashName(name),
		Name:        name,
		Type:        typ,
		Tags:        tags,
		Value:       value,
		TimestampUs: time.Now().UnixMicro(),
	}
}

// HashName computes the FNV-1a hash of a UTF-8 metric name.
func HashName(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// Counter is a monotonically non-decreasing accumulator.
type Counter struct {
	value uint64
}

// Add increases the counter by delta (delta should be >= 0).
func (c *Counter) Add(delta uint64) { c.value += delta }

// Value returns the current total.
func (c *Counter) Value() uint64 { return c.value }

// Gauge is a point-in-time value that can move in either direction.
type Gauge struct {
	value float64
}

// Set assigns the gauge's current value.
func (g *Gauge) Set(v float64) { g.value = v }

// Add adjusts the gauge's current value by delta.
func (g *Gauge) Add(delta float64) { g.value += delta }

// Value returns the current reading.
func (g *Gauge) Value() float64 { return g.value }

// SetAggregator is a deduplicated collection of distinct values observed.
type SetAggregator struct {
	seen map[float64]struct{}
}

// NewSetAggregator creates an empty SetAggregator.
func NewSetAggregator() *SetAggregator {
	return &SetAggregator{seen: make(map[float64]struct{})}
}

// Observe records v, deduplicating against prior observations.
func (s *SetAggregator) Observe(v float64) { s.seen[v] = struct{}{} }

// Cardinality returns the number of distinct values observed.
func (s *SetAggregator) Cardinality() int { return len(s.seen) }

// Timer accumulates duration samples into a Histogram using the
// default "seconds-like" buckets.
type Timer struct {
	hist *Histogram
}

// NewTimer creates a Timer backed by the default bucket set.
func NewTimer() *Timer {
	return &Timer{hist: NewHistogram(DefaultBuckets())}
}

// Observe records a duration, converted to seconds.
func (t *Timer) Observe(d time.Duration) {
	t.hist.Observe(d.Seconds())
}

// Histogram returns the underlying bucket/sum/count state.
func (t *Timer) Histogram() *Histogram { return t.hist }

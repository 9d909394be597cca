// Package timeseries implements a bounded, retention-aware ring of
// TimePoint samples with chronological insertion, interpolation-based
// compression, and windowed aggregation queries.
package timeseries

import (
	"sort"
	"sync"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
)

// TimePoint is a single sample: a value, the number of raw samples
// merged into it, and its timestamp.
type TimePoint struct {
	Timestamp   time.Time
	Value       float64
	SampleCount uint32
}

// merge combines other into p using a sample-count-weighted average,
// keeping the later of the two timestamps.
func (p *TimePoint) merge(other TimePoint) {
	if p.SampleCount == 0 {
		*p = other
		return
	}
	if other.SampleCount == 0 {
		return
	}
	totalWeight := float64(p.SampleCount + other.SampleCount)
	p.Value = (p.Value*float64(p.SampleCount) + other.Value*float64(other.SampleCount)) / totalWeight
	p.SampleCount += other.SampleCount
	if other.Timestamp.After(p.Timestamp) {
		p.Timestamp = other.Timestamp
	}
}

// Config controls retention, compression, and the maximum number of
// points a Series retains.
type Config struct {
	Retention            time.Duration
	MaxPoints            int
	EnableCompression    bool
	CompressionThreshold float64
}

// DefaultConfig mirrors typical monitoring-core defaults: an hour of
// retention, 3600 max points, compression on with an absolute
// interpolation threshold of 0.01.
func DefaultConfig() Config {
	return Config{
		Retention:            time.Hour,
		MaxPoints:            3600,
		EnableCompression:    true,
		CompressionThreshold: 0.01,
	}
}

// Series is a thread-safe, chronologically ordered point history for
// one named metric.
type Series struct {
	mu     sync.Mutex
	name   string
	cfg    Config
	points []TimePoint
}

// New creates an empty Series. Returns InvalidConfiguration if cfg's
// bounds are non-positive.
func New(name string, cfg Config) (*Series, error) {
	if cfg.Retention <= 0 {
		return nil, errs.New(errs.InvalidConfiguration, "timeseries.New", "retention must be positive")
	}
	if cfg.MaxPoints <= 0 {
		return nil, errs.New(errs.InvalidCapacity, "timeseries.New", "max_points must be positive")
	}
	return &Series{name: name, cfg: cfg}, nil
}

// Name returns the series' name.
func (s *Series) Name() string { return s.name }

// AddPoint inserts a sample in chronological order, then runs
// maintenance in the documented order: retention eviction,
// interpolation-based compression, then max-points trim.
func (s *Series) AddPoint(value float64, timestamp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	point := TimePoint{Timestamp: timestamp, Value: value, SampleCount: 1}
	idx := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Timestamp.After(timestamp)
	})
	s.points = append(s.points, TimePoint{})
	copy(s.points[idx+1:], s.points[idx:])
	s.points[idx] = point

	s.evictExpiredLocked()
	s.compressLocked()
	s.trimLocked()
}

func (s *Series) evictExpiredLocked() {
	cutoff := time.Now().Add(-s.cfg.Retention)
	firstValid := 0
	for firstValid < len(s.points) && s.points[firstValid].Timestamp.Before(cutoff) {
		firstValid++
	}
	if firstValid > 0 {
		s.points = append([]TimePoint(nil), s.points[firstValid:]...)
	}
}

func (s *Series) compressLocked() {
	if !s.cfg.EnableCompression || len(s.points) < 3 {
		return
	}
	compressed := make([]TimePoint, 0, len(s.points))
	compressed = append(compressed, s.points[0])

	for i := 1; i < len(s.points)-1; i++ {
		prev := s.points[i-1]
		curr := s.points[i]
		next := s.points[i+1]

		span := next.Timestamp.Sub(prev.Timestamp).Seconds()
		if span <= 0 {
			compressed = append(compressed, curr)
			continue
		}
		frac := curr.Timestamp.Sub(prev.Timestamp).Seconds() / span
		expected := prev.Value + (next.Value-prev.Value)*frac
		if abs(curr.Value-expected) > s.cfg.CompressionThreshold {
			compressed = append(compressed, curr)
		}
	}
	compressed = append(compressed, s.points[len(s.points)-1])
	s.points = compressed
}

func (s *Series) trimLocked() {
	if len(s.points) > s.cfg.MaxPoints {
		excess := len(s.points) - s.cfg.MaxPoints
		s.points = append([]TimePoint(nil), s.points[excess:]...)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Size returns the current number of retained points.
func (s *Series) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// Query parameters for AggregationResult.
type Query struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// AggregationResult is the windowed output of Series.Query.
type AggregationResult struct {
	Points       []TimePoint
	TotalSamples uint64
}

// Query bins the series' points into Step-sized windows over
// [Start, End) and emits one aggregated TimePoint per non-empty
// window; the timestamp is the window midpoint and the value is the
// sample-count-weighted average of points in that window.
func (s *Series) Query(q Query) (AggregationResult, error) {
	if !q.Start.Before(q.End) {
		return AggregationResult{}, errs.New(errs.InvalidArgument, "timeseries.Query", "start must be before end")
	}
	if q.Step <= 0 {
		return AggregationResult{}, errs.New(errs.InvalidArgument, "timeseries.Query", "step must be positive")
	}

	s.mu.Lock()
	snapshot := append([]TimePoint(nil), s.points...)
	s.mu.Unlock()

	var result AggregationResult
	for stepStart := q.Start; stepStart.Before(q.End); {
		stepEnd := stepStart.Add(q.Step)
		if stepEnd.After(q.End) {
			stepEnd = q.End
		}

		var agg TimePoint
		for _, p := range snapshot {
			if !p.Timestamp.Before(stepStart) && p.Timestamp.Before(stepEnd) {
				agg.merge(p)
				result.TotalSamples += uint64(p.SampleCount)
			}
		}
		if agg.SampleCount > 0 {
			agg.Timestamp = stepStart.Add(q.Step / 2)
			result.Points = append(result.Points, agg)
		}
		stepStart = stepEnd
	}
	return result, nil
}

// Rate returns (last.value - first.value) / seconds(last.ts - first.ts)
// over the series' currently retained points.
func (s *Series) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.points) < 2 {
		return 0
	}
	first := s.points[0]
	last := s.points[len(s.points)-1]
	seconds := last.Timestamp.Sub(first.Timestamp).Seconds()
	if seconds <= 0 {
		return 0
	}
	return (last.Value - first.Value) / seconds
}

// Clear removes all points.
func (s *Series) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = nil
}

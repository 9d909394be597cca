// Package collector implements the plugin registry, polling workers,
// TTL-purged cache, and observer fan-out described as the Collector
// Hub, generalized from a hardcoded-collector monitoring service into
// a pluggable registry.
package collector

import (
	"sync"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
	"github.com/kcenon/threadmon/internal/metrics"
)

// Plugin is the contract every registered collector satisfies.
type Plugin interface {
	Initialize(config map[string]string) error
	Collect() ([]metrics.Metric, error)
	Name() string
	MetricTypes() []metrics.Type
	IsHealthy() bool
	Statistics() map[string]float64
}

// Config controls the hub's polling cadence and cache lifetime.
type Config struct {
	CollectionInterval time.Duration
	WorkerThreads      int
	CacheTTL           time.Duration
	AggregationWindow  time.Duration
}

type cacheEntry struct {
	metric     metrics.Metric
	pluginName string
	receivedAt time.Time
}

// MetricEvent is delivered to observers for every collected metric.
type MetricEvent struct {
	Source string
	Metric metrics.Metric
}

// Observer is a liveness-checked fan-out target: Go has no weak
// references, so liveness is approximated via a callback the hub
// polls on every delivery attempt; once it returns false the observer
// is pruned on the next publish.
type Observer struct {
	Alive  func() bool
	Notify func(MetricEvent)
}

// Hub registers collector plugins, polls them on a schedule, caches
// their output with TTL eviction, and fans collected metrics out to
// registered observers.
type Hub struct {
	cfg Config

	pluginsMu sync.RWMutex
	plugins   map[string]Plugin

	cacheMu sync.Mutex
	cache   []cacheEntry

	obsMu     sync.Mutex
	observers []*Observer

	collectionErrors uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Hub with the given configuration.
func New(cfg Config) *Hub {
	if cfg.WorkerThreads < 1 {
		cfg.WorkerThreads = 1
	}
	return &Hub{
		cfg:     cfg,
		plugins: make(map[string]Plugin),
		stopCh:  make(chan struct{}),
	}
}

// Register adds plugin under its own Name(). Re-registration with an
// already-used name returns CollectorAlreadyExists.
func (h *Hub) Register(plugin Plugin) error {
	h.pluginsMu.Lock()
	defer h.pluginsMu.Unlock()
	name := plugin.Name()
	if _, exists := h.plugins[name]; exists {
		return errs.New(errs.CollectorAlreadyExists, "collector.Hub.Register", "collector already registered: "+name)
	}
	h.plugins[name] = plugin
	return nil
}

// Unregister removes a plugin by name.
func (h *Hub) Unregister(name string) {
	h.pluginsMu.Lock()
	defer h.pluginsMu.Unlock()
	delete(h.plugins, name)
}

// Subscribe registers an observer for the hub's collected-metric
// fan-out.
func (h *Hub) Subscribe(obs *Observer) {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()
	h.observers = append(h.observers, obs)
}

// Start launches the configured number of collection workers, each
// waking on CollectionInterval to iterate every registered plugin.
func (h *Hub) Start() {
	for i := 0; i < h.cfg.WorkerThreads; i++ {
		h.wg.Add(1)
		go h.runWorker()
	}
}

// Stop signals every collection worker and waits for them to exit.
func (h *Hub) Stop() {
	close(h.stopCh)
	h.wg.Wait()
}

func (h *Hub) runWorker() {
	defer h.wg.Done()
	interval := h.cfg.CollectionInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.collectOnce()
		}
	}
}

func (h *Hub) collectOnce() {
	h.pluginsMu.RLock()
	plugins := make([]Plugin, 0, len(h.plugins))
	for _, p := range h.plugins {
		plugins = append(plugins, p)
	}
	h.pluginsMu.RUnlock()

	for _, p := range plugins {
		collected, err := p.Collect()
		if err != nil {
			h.cacheMu.Lock()
			h.collectionErrors++
			h.cacheMu.Unlock()
			continue
		}
		now := time.Now()
		h.cacheMu.Lock()
		for _, m := range collected {
			h.cache = append(h.cache, cacheEntry{metric: m, pluginName: p.Name(), receivedAt: now})
		}
		h.purgeExpiredLocked(now)
		h.cacheMu.Unlock()

		for _, m := range collected {
			h.publish(MetricEvent{Source: p.Name(), Metric: m})
		}
	}
}

func (h *Hub) purgeExpiredLocked(now time.Time) {
	if h.cfg.CacheTTL <= 0 {
		return
	}
	cutoff := now.Add(-h.cfg.CacheTTL)
	kept := h.cache[:0]
	for _, e := range h.cache {
		if e.receivedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	h.cache = kept
}

func (h *Hub) publish(evt MetricEvent) {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()

	alive := h.observers[:0]
	for _, obs := range h.observers {
		if !obs.Alive() {
			continue
		}
		obs.Notify(evt)
		alive = append(alive, obs)
	}
	h.observers = alive
}

// Aggregate holds per-name statistics over the configured aggregation
// window.
type Aggregate struct {
	Count uint64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Aggregate computes per-metric-name {count, sum, min, max, mean} over
// the hub's cached entries within the configured AggregationWindow.
func (h *Hub) Aggregate() map[string]Aggregate {
	h.cacheMu.Lock()
	snapshot := append([]cacheEntry(nil), h.cache...)
	h.cacheMu.Unlock()

	cutoff := time.Now().Add(-h.cfg.AggregationWindow)
	byName := make(map[string]*Aggregate)
	for _, e := range snapshot {
		if h.cfg.AggregationWindow > 0 && e.receivedAt.Before(cutoff) {
			continue
		}
		agg, ok := byName[e.metric.Name]
		if !ok {
			agg = &Aggregate{Min: e.metric.Value, Max: e.metric.Value}
			byName[e.metric.Name] = agg
		}
		agg.Count++
		agg.Sum += e.metric.Value
		if e.metric.Value < agg.Min {
			agg.Min = e.metric.Value
		}
		if e.metric.Value > agg.Max {
			agg.Max = e.metric.Value
		}
	}
	out := make(map[string]Aggregate, len(byName))
	for name, agg := range byName {
		agg.Mean = agg.Sum / float64(agg.Count)
		out[name] = *agg
	}
	return out
}

// CollectionErrors returns the running count of plugin Collect() failures.
func (h *Hub) CollectionErrors() uint64 {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	return h.collectionErrors
}

// CacheSize returns the current number of cached entries.
func (h *Hub) CacheSize() int {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	return len(h.cache)
}

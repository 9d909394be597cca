// Package eventbus implements a priority-ordered, bounded pub/sub bus
// with back-pressure and worker-thread dispatch, grounded on the
// subscription/dispatch shape of a condition-variable broker but
// reworked around typed-tag priority envelopes instead of topic
// string matching.
package eventbus

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
)

// Config controls the bus' capacity and dispatch cadence.
type Config struct {
	MaxQueueSize          int
	WorkerThreadCount     int
	ProcessingInterval    time.Duration
	BackPressureThreshold int
	AutoStart             bool
}

const maxBatchPerTick = 10
const backPressureStall = 2 * time.Millisecond

type heapItem struct {
	env Envelope
}

type priorityHeap []heapItem

func (h priorityHeap) Len() int { return len(h) }
func (h priorityHeap) Less(i, j int) bool {
	if h[i].env.Priority != h[j].env.Priority {
		return h[i].env.Priority > h[j].env.Priority // desc priority
	}
	return h[i].env.seq < h[j].env.seq // asc enqueue order
}
func (h priorityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x interface{}) {
	*h = append(*h, x.(heapItem))
}
func (h *priorityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type subscription struct {
	id       uint64
	priority int
	handler  Handler
}

// Bus is a bounded, priority-ordered event bus. Subscribe/Publish are
// safe for concurrent use; Close drains the queue before terminating
// every worker.
type Bus struct {
	cfg Config

	queueMu sync.Mutex
	queue   priorityHeap
	nextSeq uint64

	subsMu        sync.RWMutex
	subscriptions map[string][]*subscription
	nextHandlerID uint64

	published uint64
	processed uint64
	dropped   uint64

	stopCh chan struct{}
	wake   chan struct{}
	wg     sync.WaitGroup
	closed int32
}

// New creates a Bus. Defaults are filled in for zero-valued fields:
// WorkerThreadCount>=1, ProcessingInterval>0.
func New(cfg Config) *Bus {
	if cfg.WorkerThreadCount < 1 {
		cfg.WorkerThreadCount = 1
	}
	if cfg.ProcessingInterval <= 0 {
		cfg.ProcessingInterval = 50 * time.Millisecond
	}
	b := &Bus{
		cfg:           cfg,
		subscriptions: make(map[string][]*subscription),
		stopCh:        make(chan struct{}),
		wake:          make(chan struct{}, 1),
	}
	if cfg.AutoStart {
		b.Start()
	}
	return b
}

// Start launches the configured number of dispatch workers. Safe to
// call at most once.
func (b *Bus) Start() {
	for i := 0; i < b.cfg.WorkerThreadCount; i++ {
		b.wg.Add(1)
		go b.runWorker()
	}
}

// Publish enqueues an event of the given type/priority. Returns
// ResourceExhausted without enqueuing if the queue is already at
// max_queue_size. If the queue is at or above back_pressure_threshold,
// the publisher stalls briefly before inserting (adaptive stall).
func (b *Bus) Publish(eventType string, priority int, payload interface{}) error {
	if atomic.LoadInt32(&b.closed) == 1 {
		return errs.New(errs.QueueClosed, "eventbus.Bus.Publish", "bus is closed")
	}

	b.queueMu.Lock()
	if b.cfg.MaxQueueSize > 0 && len(b.queue) >= b.cfg.MaxQueueSize {
		b.queueMu.Unlock()
		atomic.AddUint64(&b.published, 1)
		atomic.AddUint64(&b.dropped, 1)
		return errs.New(errs.ResourceExhausted, "eventbus.Bus.Publish", "queue at capacity, event dropped")
	}
	needsStall := b.cfg.BackPressureThreshold > 0 && len(b.queue) >= b.cfg.BackPressureThreshold
	b.queueMu.Unlock()

	if needsStall {
		time.Sleep(backPressureStall)
	}

	b.queueMu.Lock()
	b.nextSeq++
	env := Envelope{Type: eventType, Priority: priority, Payload: payload, Enqueued: time.Now(), seq: b.nextSeq}
	heap.Push(&b.queue, heapItem{env: env})
	b.queueMu.Unlock()

	atomic.AddUint64(&b.published, 1)
	select {
	case b.wake <- struct{}{}:
	default:
	}
	return nil
}

// Subscribe registers handler for eventType with the given dispatch
// priority. Handlers for a type are sorted by priority descending;
// ties keep their relative subscribe order.
func (b *Bus) Subscribe(eventType string, priority int, handler Handler) SubscriptionToken {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	b.nextHandlerID++
	sub := &subscription{id: b.nextHandlerID, priority: priority, handler: handler}
	subs := append(b.subscriptions[eventType], sub)
	sortByPriorityDescStable(subs)
	b.subscriptions[eventType] = subs

	return SubscriptionToken{Type: eventType, HandlerID: sub.id}
}

// Unsubscribe removes a previously returned token's handler.
func (b *Bus) Unsubscribe(token SubscriptionToken) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	subs := b.subscriptions[token.Type]
	for i, s := range subs {
		if s.id == token.HandlerID {
			b.subscriptions[token.Type] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func sortByPriorityDescStable(subs []*subscription) {
	for i := 1; i < len(subs); i++ {
		j := i
		for j > 0 && subs[j-1].priority < subs[j].priority {
			subs[j-1], subs[j] = subs[j], subs[j-1]
			j--
		}
	}
}

func (b *Bus) runWorker() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.ProcessingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			b.drainRemaining()
			return
		case <-ticker.C:
			b.dispatchBatch()
		case <-b.wake:
			b.dispatchBatch()
		}
	}
}

func (b *Bus) drainRemaining() {
	for {
		n := b.dispatchBatch()
		if n == 0 {
			return
		}
	}
}

func (b *Bus) dispatchBatch() int {
	batch := make([]Envelope, 0, maxBatchPerTick)
	b.queueMu.Lock()
	for i := 0; i < maxBatchPerTick && len(b.queue) > 0; i++ {
		item := heap.Pop(&b.queue).(heapItem)
		batch = append(batch, item.env)
	}
	b.queueMu.Unlock()

	for _, env := range batch {
		b.dispatch(env)
		atomic.AddUint64(&b.processed, 1)
	}
	return len(batch)
}

func (b *Bus) dispatch(env Envelope) {
	b.subsMu.RLock()
	handlers := append([]*subscription(nil), b.subscriptions[env.Type]...)
	b.subsMu.RUnlock()

	for _, sub := range handlers {
		b.invokeSafely(sub.handler, env)
	}
}

func (b *Bus) invokeSafely(h Handler, env Envelope) {
	defer func() {
		_ = recover()
	}()
	h(env)
}

// Close stops accepting new events, drains the remaining queue across
// all workers, then returns once every worker has exited.
func (b *Bus) Close() {
	if !atomic.CompareAndSwapInt32(&b.closed, 0, 1) {
		return
	}
	close(b.stopCh)
	b.wg.Wait()
}

// Stats reports the bus' running counters. Published counts every
// accepted or dropped Publish call. The counters are read without one
// common lock, and an event a worker has taken off the queue but not
// finished dispatching is counted in neither Processed nor Pending, so
// published = processed + dropped + pending holds once no Publish or
// dispatch is in progress.
type Stats struct {
	Published uint64
	Processed uint64
	Dropped   uint64
	Pending   int
}

// Stats returns a snapshot of the bus' counters.
func (b *Bus) Stats() Stats {
	b.queueMu.Lock()
	pending := len(b.queue)
	b.queueMu.Unlock()
	return Stats{
		Published: atomic.LoadUint64(&b.published),
		Processed: atomic.LoadUint64(&b.processed),
		Dropped:   atomic.LoadUint64(&b.dropped),
		Pending:   pending,
	}
}

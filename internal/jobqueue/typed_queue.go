package jobqueue

import (
	"sync"

	"github.com/kcenon/threadmon/internal/errs"
)

// TypedJobQueue routes jobs into lazily-created per-priority
// sub-queues. Dequeue blocks on a union-wake condition: an enqueue
// into any priority in the caller's preference set wakes every
// blocked dequeuer, which then re-checks its own preference order.
type TypedJobQueue[P comparable] struct {
	mapMu  sync.RWMutex
	queues map[P]*Queue

	wakeMu sync.Mutex
	wake   *sync.Cond

	maxSizePerQueue int
	closed          bool
}

// NewTypedJobQueue creates an empty TypedJobQueue. maxSizePerQueue is
// forwarded to every lazily-created sub-queue (<=0 means unbounded).
func NewTypedJobQueue[P comparable](maxSizePerQueue int) *TypedJobQueue[P] {
	t := &TypedJobQueue[P]{
		queues:          make(map[P]*Queue),
		maxSizePerQueue: maxSizePerQueue,
	}
	t.wake = sync.NewCond(&t.wakeMu)
	return t
}

func (t *TypedJobQueue[P]) subQueue(priority P, createIfMissing bool) *Queue {
	t.mapMu.RLock()
	q, ok := t.queues[priority]
	t.mapMu.RUnlock()
	if ok || !createIfMissing {
		return q
	}

	t.mapMu.Lock()
	defer t.mapMu.Unlock()
	if q, ok = t.queues[priority]; ok {
		return q
	}
	q = NewQueue(t.maxSizePerQueue)
	t.queues[priority] = q
	return q
}

// Enqueue routes job into the sub-queue for its priority, creating the
// sub-queue on first use.
func (t *TypedJobQueue[P]) Enqueue(job TypedJob[P]) error {
	t.wakeMu.Lock()
	closed := t.closed
	t.wakeMu.Unlock()
	if closed {
		return errs.New(errs.QueueClosed, "jobqueue.TypedJobQueue.Enqueue", "queue is closed")
	}

	q := t.subQueue(job.Priority(), true)
	if err := q.Enqueue(job); err != nil {
		return err
	}
	t.wakeMu.Lock()
	t.wake.Broadcast()
	t.wakeMu.Unlock()
	return nil
}

// EnqueueBatch enqueues every typed job, grouping by priority so each
// sub-queue still receives an atomic batch insert.
func (t *TypedJobQueue[P]) EnqueueBatch(jobs []TypedJob[P]) error {
	t.wakeMu.Lock()
	closed := t.closed
	t.wakeMu.Unlock()
	if closed {
		return errs.New(errs.QueueClosed, "jobqueue.TypedJobQueue.EnqueueBatch", "queue is closed")
	}

	byPriority := make(map[P][]Job)
	order := make([]P, 0)
	for _, j := range jobs {
		p := j.Priority()
		if _, seen := byPriority[p]; !seen {
			order = append(order, p)
		}
		byPriority[p] = append(byPriority[p], j)
	}
	for _, p := range order {
		q := t.subQueue(p, true)
		if err := q.EnqueueBatch(byPriority[p]); err != nil {
			return err
		}
	}
	t.wakeMu.Lock()
	t.wake.Broadcast()
	t.wakeMu.Unlock()
	return nil
}

// Dequeue iterates preference in order and returns the first available
// head. If all preferred sub-queues are empty, the call blocks on the
// union-wake condition until an enqueue into any of them, or Close.
func (t *TypedJobQueue[P]) Dequeue(preference []P) (Job, error) {
	t.wakeMu.Lock()
	for {
		if job, ok := t.tryPopPreference(preference); ok {
			t.wakeMu.Unlock()
			return job, nil
		}
		if t.closed {
			t.wakeMu.Unlock()
			return nil, errs.New(errs.QueueClosed, "jobqueue.TypedJobQueue.Dequeue", "queue is closed")
		}
		t.wake.Wait()
	}
}

// tryPopPreference attempts a non-blocking pop across preference,
// assuming wakeMu is already held by the caller.
func (t *TypedJobQueue[P]) tryPopPreference(preference []P) (Job, bool) {
	for _, p := range preference {
		q := t.subQueue(p, false)
		if q == nil {
			continue
		}
		if job, err := q.Dequeue(false, 0); err == nil {
			return job, true
		}
	}
	return nil, false
}

// TryDequeue attempts a single non-blocking pop across preference in
// order, returning Empty if every preferred sub-queue is currently
// empty. Workers use this for the idle-poll step of their run loop
// instead of blocking indefinitely on Dequeue.
func (t *TypedJobQueue[P]) TryDequeue(preference []P) (Job, error) {
	t.wakeMu.Lock()
	closed := t.closed
	job, ok := t.tryPopPreference(preference)
	t.wakeMu.Unlock()

	if ok {
		return job, nil
	}
	if closed {
		return nil, errs.New(errs.QueueClosed, "jobqueue.TypedJobQueue.TryDequeue", "queue is closed")
	}
	return nil, errs.New(errs.Empty, "jobqueue.TypedJobQueue.TryDequeue", "no job available")
}

// Empty reports whether every sub-queue in preference is empty.
func (t *TypedJobQueue[P]) Empty(preference []P) bool {
	for _, p := range preference {
		q := t.subQueue(p, false)
		if q != nil && !q.Empty() {
			return false
		}
	}
	return true
}

// Clear empties every existing sub-queue.
func (t *TypedJobQueue[P]) Clear() {
	t.mapMu.RLock()
	defer t.mapMu.RUnlock()
	for _, q := range t.queues {
		q.Clear()
	}
}

// Close closes every sub-queue and wakes every blocked Dequeue caller.
func (t *TypedJobQueue[P]) Close() {
	t.wakeMu.Lock()
	t.closed = true
	t.wakeMu.Unlock()

	t.mapMu.RLock()
	for _, q := range t.queues {
		q.Close()
	}
	t.mapMu.RUnlock()

	t.wakeMu.Lock()
	t.wake.Broadcast()
	t.wakeMu.Unlock()
}

// Len reports the total number of queued jobs across every sub-queue.
func (t *TypedJobQueue[P]) Len() int {
	t.mapMu.RLock()
	defer t.mapMu.RUnlock()
	total := 0
	for _, q := range t.queues {
		total += q.Size()
	}
	return total
}

package jobqueue

import (
	"sync"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
)

// Queue is a single-priority FIFO job queue. Blocking Dequeue waits on
// a condition variable; Close wakes every blocked waiter exactly once.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    []Job
	maxSize  int // 0 means unbounded
	closed   bool
}

// NewQueue creates a Queue. maxSize <= 0 means unbounded.
func NewQueue(maxSize int) *Queue {
	q := &Queue{maxSize: maxSize}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends job to the tail. Returns QueueClosed if the queue
// has been closed, ResourceExhausted if maxSize would be exceeded.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errs.New(errs.QueueClosed, "jobqueue.Queue.Enqueue", "queue is closed")
	}
	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		return errs.New(errs.ResourceExhausted, "jobqueue.Queue.Enqueue", "queue at capacity")
	}
	q.items = append(q.items, job)
	q.notEmpty.Signal()
	return nil
}

// EnqueueBatch inserts every job atomically: either all are inserted
// or none are, and no partial insert is observable by a concurrent
// Dequeue.
func (q *Queue) EnqueueBatch(jobs []Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errs.New(errs.QueueClosed, "jobqueue.Queue.EnqueueBatch", "queue is closed")
	}
	if q.maxSize > 0 && len(q.items)+len(jobs) > q.maxSize {
		return errs.New(errs.ResourceExhausted, "jobqueue.Queue.EnqueueBatch", "batch would exceed capacity")
	}
	q.items = append(q.items, jobs...)
	q.notEmpty.Broadcast()
	return nil
}

// Dequeue removes and returns the head job. When block is true it
// waits (optionally bounded by timeout, zero meaning unbounded) for a
// job or for the queue to close.
func (q *Queue) Dequeue(block bool, timeout time.Duration) (Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !block {
		return q.popLocked()
	}

	if timeout <= 0 {
		for len(q.items) == 0 && !q.closed {
			q.notEmpty.Wait()
		}
		return q.popLocked()
	}

	deadline := time.Now().Add(timeout)
	for len(q.items) == 0 && !q.closed {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, errs.New(errs.Timeout, "jobqueue.Queue.Dequeue", "dequeue timed out")
		}
		woke := make(chan struct{})
		timer := time.AfterFunc(remaining, func() {
			q.mu.Lock()
			q.notEmpty.Broadcast()
			q.mu.Unlock()
			close(woke)
		})
		q.notEmpty.Wait()
		timer.Stop()
		select {
		case <-woke:
		default:
		}
	}
	return q.popLocked()
}

func (q *Queue) popLocked() (Job, error) {
	if len(q.items) == 0 {
		if q.closed {
			return nil, errs.New(errs.QueueClosed, "jobqueue.Queue.Dequeue", "queue is closed")
		}
		return nil, errs.New(errs.Empty, "jobqueue.Queue.Dequeue", "queue is empty")
	}
	job := q.items[0]
	q.items = q.items[1:]
	return job, nil
}

// Size reports the number of queued, not-yet-dequeued jobs.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue currently has no items.
func (q *Queue) Empty() bool {
	return q.Size() == 0
}

// Clear discards all queued jobs without closing the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Close marks the queue closed and wakes every blocked waiter exactly
// once via Broadcast. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
}

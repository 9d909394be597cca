// Package pool implements the typed thread pool: a named collection
// of workers sharing one TypedJobQueue, with explicit start/stop
// lifecycle and live scaling operations.
package pool

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/kcenon/threadmon/internal/errs"
	"github.com/kcenon/threadmon/internal/jobqueue"
	"github.com/kcenon/threadmon/internal/svccontext"
	"github.com/kcenon/threadmon/internal/worker"
)

type poolState int32

const (
	poolCreated poolState = iota
	poolRunning
	poolStopped
)

// Pool is a TypedThreadPool[P]: a named queue plus a set of workers
// reading from it, restricted to a shared affinity preference.
type Pool[P comparable] struct {
	title      string
	instanceID string
	svcCtx     svccontext.Context

	mu       sync.Mutex
	queue    *jobqueue.TypedJobQueue[P]
	workers  []*worker.Worker[P]
	policy   worker.Policy
	affinity []P

	state poolState
}

// nextInstanceID is the process-wide counter behind Pool instance ids.
var nextInstanceID atomic.Uint64

// New creates a Pool bound to title/svcCtx, with no workers yet
// added. affinity is the preference order every worker dequeues with;
// policy is applied to every worker added to the pool afterwards.
func New[P comparable](title string, svcCtx svccontext.Context, affinity []P, policy worker.Policy, maxQueueSizePerPriority int) *Pool[P] {
	return &Pool[P]{
		title:      title,
		instanceID: strconv.FormatUint(nextInstanceID.Add(1), 10),
		svcCtx:     svcCtx,
		queue:      jobqueue.NewTypedJobQueue[P](maxQueueSizePerPriority),
		policy:     policy,
		affinity:   affinity,
		state:      poolCreated,
	}
}

// Queue returns the pool's shared TypedJobQueue.
func (p *Pool[P]) Queue() *jobqueue.TypedJobQueue[P] { return p.queue }

// Context returns the pool's svccontext.Context.
func (p *Pool[P]) Context() svccontext.Context { return p.svcCtx }

// InstanceID returns the pool's unique instance identifier.
func (p *Pool[P]) InstanceID() string { return p.instanceID }

// String returns a short human-readable identity for logging.
func (p *Pool[P]) String() string { return p.title + "#" + p.instanceID }

// AddWorker appends a single worker, preserving the ids of existing
// workers. If the pool is already running, the new worker is started
// immediately.
func (p *Pool[P]) AddWorker(id string) *worker.Worker[P] {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := worker.New(id, p.policy, p.queue, p.affinity, p.svcCtx)
	p.workers = append(p.workers, w)
	if p.state == poolRunning {
		w.Start()
	}
	return w
}

// AddWorkers appends a batch of n workers named prefix-<r>-<k>, where
// r is a random 8-character segment and k counts up from the number of
// workers the pool held before the call (prefix-<r>-0..prefix-<r>-(n-1)
// on an empty pool).
func (p *Pool[P]) AddWorkers(prefix string, n int) []*worker.Worker[P] {
	out := make([]*worker.Worker[P], 0, n)
	p.mu.Lock()
	base := len(p.workers)
	p.mu.Unlock()
	for i := 0; i < n; i++ {
		out = append(out, p.AddWorker(workerName(prefix, i, base)))
	}
	return out
}

func workerName(prefix string, i, base int) string {
	return prefix + "-" + uuid.NewString()[:8] + "-" + itoa(base+i)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Start launches every added worker exactly once. Returns
// AlreadyStarted if called twice, NoWorkers if empty.
func (p *Pool[P]) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == poolRunning {
		return errs.New(errs.AlreadyStarted, "pool.Pool.Start", "pool already started")
	}
	if len(p.workers) == 0 {
		return errs.New(errs.NoWorkers, "pool.Pool.Start", "no workers added")
	}

	for _, w := range p.workers {
		w.Start()
	}
	p.state = poolRunning
	return nil
}

// Enqueue submits a typed job; succeeds iff the pool is not Stopped.
func (p *Pool[P]) Enqueue(job jobqueue.TypedJob[P]) error {
	p.mu.Lock()
	stopped := p.state == poolStopped
	p.mu.Unlock()
	if stopped {
		return errs.New(errs.InvalidState, "pool.Pool.Enqueue", "pool is stopped")
	}
	return p.queue.Enqueue(job)
}

// EnqueueBatch submits a batch of typed jobs atomically at the queue
// layer; succeeds iff the pool is not Stopped.
func (p *Pool[P]) EnqueueBatch(jobs []jobqueue.TypedJob[P]) error {
	p.mu.Lock()
	stopped := p.state == poolStopped
	p.mu.Unlock()
	if stopped {
		return errs.New(errs.InvalidState, "pool.Pool.EnqueueBatch", "pool is stopped")
	}
	return p.queue.EnqueueBatch(jobs)
}

// Stop signals every worker and blocks until each has reached Stopped.
// If clear is true the queue is emptied before workers observe drain.
// Idempotent: a second call returns nil immediately.
func (p *Pool[P]) Stop(clear bool) error {
	p.mu.Lock()
	if p.state == poolStopped {
		p.mu.Unlock()
		return nil
	}
	workers := append([]*worker.Worker[P](nil), p.workers...)
	p.state = poolStopped
	p.mu.Unlock()

	if clear {
		p.queue.Clear()
	}
	p.queue.Close()

	var joinErr error
	for _, w := range workers {
		joinErr = multierr.Append(joinErr, w.Stop())
	}
	return joinErr
}

// ScaleUp adds n additional live workers, starting them immediately
// if the pool is already running.
func (p *Pool[P]) ScaleUp(n int) []*worker.Worker[P] {
	return p.AddWorkers(p.policy.WorkerNamePrefix, n)
}

// ScaleDown stops and removes up to n currently Idle workers.
func (p *Pool[P]) ScaleDown(n int) error {
	p.mu.Lock()
	candidates := make([]*worker.Worker[P], 0, n)
	remaining := p.workers[:0:0]
	for _, w := range p.workers {
		if len(candidates) < n && w.State() == worker.StateIdle {
			candidates = append(candidates, w)
			continue
		}
		remaining = append(remaining, w)
	}
	p.workers = remaining
	p.mu.Unlock()

	var errAgg error
	for _, w := range candidates {
		errAgg = multierr.Append(errAgg, w.Stop())
	}
	return errAgg
}

// Workers returns a snapshot of the pool's current worker set.
func (p *Pool[P]) Workers() []*worker.Worker[P] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*worker.Worker[P](nil), p.workers...)
}

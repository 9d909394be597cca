package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kcenon/threadmon/internal/errs"
	"github.com/kcenon/threadmon/internal/jobqueue"
	"github.com/kcenon/threadmon/internal/metrics"
	"github.com/kcenon/threadmon/internal/svccontext"
)

// State is a point in the worker lifecycle:
// Created -> Starting -> Running <-> Idle -> Stopping -> Stopped,
// with a Running/Idle -> Failed transition on excessive consecutive
// job failures.
type State int32

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateIdle
	StateStopping
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateIdle:
		return "Idle"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Created"
	}
}

// Worker runs a dedicated goroutine that repeatedly dequeues from a
// TypedJobQueue restricted to its affinity set and executes jobs.
type Worker[P comparable] struct {
	id       string
	policy   Policy
	queue    *jobqueue.TypedJobQueue[P]
	affinity []P
	svcCtx   svccontext.Context

	state    atomic.Int32
	stopReq  atomic.Bool
	wg       sync.WaitGroup

	jobsHandled         atomic.Uint64
	jobsFailed          atomic.Uint64
	consecutiveFailures int
	runTimer            *metrics.Timer
}

// New builds a Worker bound to queue, restricted to affinity, using
// policy for its scheduling knobs and svcCtx for logging/metrics.
func New[P comparable](id string, policy Policy, queue *jobqueue.TypedJobQueue[P], affinity []P, svcCtx svccontext.Context) *Worker[P] {
	w := &Worker[P]{
		id:       id,
		policy:   policy,
		queue:    queue,
		affinity: affinity,
		svcCtx:   svcCtx,
		runTimer: metrics.NewTimer(),
	}
	w.state.Store(int32(StateCreated))
	return w
}

// ID returns the worker's identity.
func (w *Worker[P]) ID() string { return w.id }

// State returns the worker's current lifecycle state.
func (w *Worker[P]) State() State { return State(w.state.Load()) }

func (w *Worker[P]) setState(s State) { w.state.Store(int32(s)) }

// Start launches the worker's run loop in a new goroutine. Safe to
// call once per worker.
func (w *Worker[P]) Start() {
	w.setState(StateStarting)
	w.wg.Add(1)
	go w.run()
}

// Stop requests cooperative shutdown and blocks until the run loop
// has exited. Returns an error only if the worker ended in the Failed
// state rather than a clean Stopped.
func (w *Worker[P]) Stop() error {
	w.stopReq.Store(true)
	w.wg.Wait()
	if w.State() == StateFailed {
		return errs.New(errs.JobExecutionFailed, "worker.Worker.Stop", "worker stopped in Failed state after "+w.id)
	}
	return nil
}

func (w *Worker[P]) run() {
	defer w.wg.Done()
	w.setState(StateRunning)

	for {
		job, err := w.queue.TryDequeue(w.affinity)
		if err != nil {
			if info, ok := err.(*errs.Info); ok && info.Kind == errs.QueueClosed {
				w.setState(StateStopping)
				w.setState(StateStopped)
				return
			}
			// Queue is merely empty, not closed: a currently-queued job
			// would have been drained above, so there's nothing left for
			// a pending stop to wait on.
			if w.stopReq.Load() {
				w.setState(StateStopping)
				w.setState(StateStopped)
				return
			}
			w.setState(StateIdle)
			w.idleWait()
			continue
		}

		w.setState(StateRunning)
		start := time.Now()
		runErr := job.Run(context.Background())
		w.runTimer.Observe(time.Since(start))

		if runErr != nil {
			w.jobsFailed.Add(1)
			w.consecutiveFailures++
			if !w.policy.ContinueOnException && w.policy.MaxConsecutiveFailures > 0 &&
				w.consecutiveFailures >= w.policy.MaxConsecutiveFailures {
				w.setState(StateFailed)
				return
			}
			continue
		}

		w.jobsHandled.Add(1)
		w.consecutiveFailures = 0
	}
}

func (w *Worker[P]) idleWait() {
	switch {
	case w.policy.SleepWhenIdle && w.policy.IdleSleepDuration > 0:
		time.Sleep(w.policy.IdleSleepDuration)
	case w.policy.YieldOnIdle:
		runtime.Gosched()
	default:
		time.Sleep(time.Millisecond)
	}
}

// Metrics returns a point-in-time snapshot of this worker's counters.
func (w *Worker[P]) Metrics() svccontext.WorkerMetrics {
	handled := w.jobsHandled.Load()
	var avgMicros float64
	if handled > 0 {
		avgMicros = w.runTimer.Histogram().Sum() * 1_000_000 / float64(handled)
	}
	return svccontext.WorkerMetrics{
		WorkerID:     w.id,
		JobsHandled:  handled,
		JobsFailed:   w.jobsFailed.Load(),
		AvgRunMicros: avgMicros,
		SampledAt:    time.Now(),
	}
}

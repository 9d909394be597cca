// Package jobqueue implements the single-priority job queue and the
// generic, per-priority TypedJobQueue built on top of it.
package jobqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the minimal contract every queued unit of work satisfies.
type Job interface {
	ID() string
	Run(ctx context.Context) error
}

// TypedJob is a Job that additionally carries the priority used to
// route it into a TypedJobQueue's per-priority sub-queues.
type TypedJob[P comparable] interface {
	Job
	Priority() P
}

// BaseJob is an embeddable Job implementation carrying the bookkeeping
// fields every concrete job needs: identity, enqueue time, and a
// cooperative cancellation flag a long-running Run can poll.
type BaseJob struct {
	id         string
	enqueuedAt time.Time
	cancelled  chan struct{}
}

// NewBaseJob creates a BaseJob with a fresh id.
func NewBaseJob() BaseJob {
	return BaseJob{id: uuid.NewString(), enqueuedAt: time.Now(), cancelled: make(chan struct{})}
}

func (b *BaseJob) ID() string { return b.id }

// EnqueuedAt reports when this job was constructed. The queues do not
// read it; they order jobs by insertion.
func (b *BaseJob) EnqueuedAt() time.Time { return b.enqueuedAt }

// Cancel requests cooperative cancellation; Run implementations should
// select on Cancelled() and return promptly.
func (b *BaseJob) Cancel() {
	select {
	case <-b.cancelled:
	default:
		close(b.cancelled)
	}
}

// Cancelled returns a channel closed once Cancel has been called.
func (b *BaseJob) Cancelled() <-chan struct{} { return b.cancelled }

// CallbackJob wraps a plain function as a Job, for callers who do not
// need a dedicated type.
type CallbackJob struct {
	BaseJob
	fn func(ctx context.Context) error
}

// NewCallbackJob builds a Job from a closure.
func NewCallbackJob(fn func(ctx context.Context) error) *CallbackJob {
	return &CallbackJob{BaseJob: NewBaseJob(), fn: fn}
}

func (c *CallbackJob) Run(ctx context.Context) error { return c.fn(ctx) }

// TypedCallbackJob is CallbackJob plus a priority, for TypedJobQueue use.
type TypedCallbackJob[P comparable] struct {
	CallbackJob
	priority P
}

// NewTypedCallbackJob builds a TypedJob from a closure and a priority.
func NewTypedCallbackJob[P comparable](priority P, fn func(ctx context.Context) error) *TypedCallbackJob[P] {
	return &TypedCallbackJob[P]{CallbackJob: *NewCallbackJob(fn), priority: priority}
}

func (t *TypedCallbackJob[P]) Priority() P { return t.priority }

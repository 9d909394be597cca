// Package worker implements the typed worker state machine that
// repeatedly dequeues from a jobqueue.TypedJobQueue and runs jobs.
package worker

import "time"

// Scheduling names a worker's scheduling mode. Worker does not read
// it: every worker dequeues FIFO, in its affinity preference order,
// whatever mode the Policy carries.
type Scheduling int

const (
	SchedulingFIFO Scheduling = iota
	SchedulingLIFO
	SchedulingPriority
	SchedulingWorkStealing
)

// Policy captures the knobs of one worker's run loop. Worker reads
// YieldOnIdle, SleepWhenIdle, IdleSleepDuration, ContinueOnException
// and MaxConsecutiveFailures; Pool reads WorkerNamePrefix. The other
// fields are carried but not read.
type Policy struct {
	Scheduling             Scheduling
	IdleTimeout            time.Duration
	YieldOnIdle            bool
	SleepWhenIdle          bool
	IdleSleepDuration      time.Duration
	MaxJobsPerBatch        int
	ContinueOnException    bool
	MaxConsecutiveFailures int
	PinToCPU               bool
	PreferredCPU           int
	WorkerNamePrefix       string
	MaxStealAttempts       int
}

// DefaultPolicy is the baseline profile: FIFO scheduling, one job per
// batch, yield when idle. ContinueOnException is on, so failed jobs
// never stop the worker; MaxConsecutiveFailures (5) takes effect only
// once ContinueOnException is turned off.
func DefaultPolicy() Policy {
	return Policy{
		Scheduling:             SchedulingFIFO,
		IdleTimeout:            100 * time.Millisecond,
		YieldOnIdle:            true,
		SleepWhenIdle:          false,
		MaxJobsPerBatch:        1,
		ContinueOnException:    true,
		MaxConsecutiveFailures: 5,
		WorkerNamePrefix:       "worker",
	}
}

// HighPerformancePolicy runs without idle sleeping and processes jobs
// in larger batches.
func HighPerformancePolicy() Policy {
	p := DefaultPolicy()
	p.SleepWhenIdle = false
	p.YieldOnIdle = false
	p.MaxJobsPerBatch = 20
	return p
}

// LowLatencyPolicy prioritizes dequeue responsiveness: priority
// scheduling, single-job batches, and a 10µs idle sleep. The idle wait
// is a time.Sleep, not a busy spin.
func LowLatencyPolicy() Policy {
	p := DefaultPolicy()
	p.Scheduling = SchedulingPriority
	p.MaxJobsPerBatch = 1
	p.SleepWhenIdle = true
	p.IdleSleepDuration = 10 * time.Microsecond
	return p
}

// PowerEfficientPolicy favors lower CPU usage over latency: a longer
// idle sleep and no work stealing.
func PowerEfficientPolicy() Policy {
	p := DefaultPolicy()
	p.SleepWhenIdle = true
	p.IdleSleepDuration = time.Millisecond
	p.Scheduling = SchedulingFIFO
	return p
}

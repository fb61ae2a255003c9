// Package task provides the background runner that drives the operator's
// long-lived loops. A Runner owns one goroutine that invokes its Worker
// repeatedly until stopped; failures inside an iteration are contained so
// one bad cycle never takes the process down.
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Worker is one unit of repeatable work. RunOnce may block (for example on
// a long-poll watch) and must return promptly once its context is
// cancelled.
type Worker interface {
	// Name identifies the worker in log output.
	Name() string

	// RunOnce performs a single iteration.
	RunOnce(ctx context.Context) error
}

// State is the lifecycle state of a Runner.
type State int

const (
	// Created is the state before Start.
	Created State = iota

	// Running means the worker goroutine is active.
	Running

	// StopRequested means Stop was called and the goroutine is winding
	// down.
	StopRequested

	// Stopped means the goroutine has exited.
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Created:
		return "Created"
	case Running:
		return "Running"
	case StopRequested:
		return "StopRequested"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner executes a Worker repeatedly on its own goroutine with a fixed
// pause between iterations.
type Runner struct {
	worker   Worker
	interval time.Duration
	log      logr.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner returns a runner for the given worker. The interval is the
// pause between the end of one iteration and the start of the next.
func NewRunner(worker Worker, interval time.Duration, log logr.Logger) *Runner {
	return &Runner{
		worker:   worker,
		interval: interval,
		log:      log.WithValues("worker", worker.Name()),
		done:     make(chan struct{}),
	}
}

// Start begins executing the worker and returns immediately. Calling Start
// more than once, or after Stop, has no effect.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Created {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.state = Running
	go r.loop(ctx)
	r.log.Info("runner started")
}

// Stop requests termination, unblocks any in-flight iteration by
// cancelling its context, and blocks until the worker goroutine has
// exited. Stop is idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	switch r.state {
	case Stopped:
		r.mu.Unlock()
		return
	case Created:
		// Never started: walk the state machine without waiting for a
		// goroutine that does not exist.
		r.state = StopRequested
		r.state = Stopped
		r.mu.Unlock()
		return
	case Running:
		r.state = StopRequested
		r.cancel()
	case StopRequested:
		// A concurrent Stop already requested cancellation; fall through
		// to wait for the goroutine.
	}
	r.mu.Unlock()

	<-r.done

	r.mu.Lock()
	r.state = Stopped
	r.mu.Unlock()
	r.log.Info("runner stopped")
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	for {
		r.runOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.interval):
		}
	}
}

// runOnce invokes one worker iteration, containing both errors and panics.
// The loop continues on the next interval regardless of the outcome.
func (r *Runner) runOnce(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error(fmt.Errorf("worker panic: %v", p), "iteration panicked")
		}
	}()

	if err := r.worker.RunOnce(ctx); err != nil && ctx.Err() == nil {
		r.log.Error(err, "iteration failed")
	}
}

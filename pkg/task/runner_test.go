package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
)

type workerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (w *workerFunc) Name() string { return w.name }

func (w *workerFunc) RunOnce(ctx context.Context) error { return w.fn(ctx) }

func TestRunnerContainsFailures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		failure func() error
	}{
		"error on first iteration": {
			failure: func() error { return errors.New("boom") },
		},
		"panic on first iteration": {
			failure: func() error { panic("boom") },
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var (
				mu         sync.Mutex
				runs       int
				secondOnce sync.Once
			)
			second := make(chan struct{})

			w := &workerFunc{name: "flaky", fn: func(context.Context) error {
				mu.Lock()
				runs++
				n := runs
				mu.Unlock()

				if n == 1 {
					return tc.failure()
				}
				secondOnce.Do(func() { close(second) })
				return nil
			}}

			r := NewRunner(w, time.Millisecond, logr.Discard())
			r.Start()
			defer r.Stop()

			select {
			case <-second:
			case <-time.After(5 * time.Second):
				t.Fatal("second iteration never ran after first iteration failed")
			}
		})
	}
}

func TestRunnerStopWaitsForWorkerExit(t *testing.T) {
	t.Parallel()

	var (
		enteredOnce sync.Once
		exited      atomic.Bool
	)
	entered := make(chan struct{})

	w := &workerFunc{name: "blocking", fn: func(ctx context.Context) error {
		enteredOnce.Do(func() { close(entered) })
		<-ctx.Done()
		// Simulate teardown work after the cancellation signal.
		time.Sleep(20 * time.Millisecond)
		exited.Store(true)
		return ctx.Err()
	}}

	r := NewRunner(w, time.Hour, logr.Discard())
	r.Start()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started")
	}

	r.Stop()

	if !exited.Load() {
		t.Error("Stop() returned before the worker goroutine exited")
	}
	if got := r.State(); got != Stopped {
		t.Errorf("State() = %v after Stop, want %v", got, Stopped)
	}

	// Stop is idempotent once Stopped.
	r.Stop()
}

func TestRunnerStateMachine(t *testing.T) {
	t.Parallel()

	w := &workerFunc{name: "idle", fn: func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}}

	r := NewRunner(w, time.Hour, logr.Discard())
	if got := r.State(); got != Created {
		t.Fatalf("State() = %v before Start, want %v", got, Created)
	}

	r.Start()
	if got := r.State(); got != Running {
		t.Fatalf("State() = %v after Start, want %v", got, Running)
	}

	// A second Start must not restart the runner.
	r.Start()
	if got := r.State(); got != Running {
		t.Fatalf("State() = %v after duplicate Start, want %v", got, Running)
	}

	r.Stop()
	if got := r.State(); got != Stopped {
		t.Fatalf("State() = %v after Stop, want %v", got, Stopped)
	}
}

func TestRunnerStopBeforeStart(t *testing.T) {
	t.Parallel()

	r := NewRunner(&workerFunc{name: "unused", fn: func(context.Context) error {
		t.Error("worker ran on a runner that was never started")
		return nil
	}}, time.Millisecond, logr.Discard())

	r.Stop()
	if got := r.State(); got != Stopped {
		t.Errorf("State() = %v, want %v", got, Stopped)
	}

	// Start after Stop stays inert.
	r.Start()
	if got := r.State(); got != Stopped {
		t.Errorf("State() = %v after Start on stopped runner, want %v", got, Stopped)
	}
}

// Package poll runs recurring checks against externally-controlled state
// (a host page's DOM, a cross-origin tab) where no change notification
// exists. A task is an interval, a predicate, and a first-class Stop
// handle: cancellation is explicit, never left to garbage collection.
package poll

import (
	"sync"
	"time"
)

// Decision is returned by the task function after each tick.
type Decision int

const (
	// Continue keeps the task running.
	Continue Decision = iota
	// Stop terminates the task: a terminal condition was reached.
	Stop
)

// Func is one poll tick. It runs on the task's own goroutine; ticks never
// overlap.
type Func func() Decision

// Task is a running poll loop.
type Task struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start begins polling fn every interval. The first tick fires after one
// interval, not immediately. The task ends when fn returns Stop or when
// Stop is called, whichever comes first.
func Start(interval time.Duration, fn Func) *Task {
	t := &Task{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if fn() == Stop {
					return
				}
			}
		}
	}()

	return t
}

// Stop cancels the task. It is idempotent and safe to call from any
// goroutine; it does not wait for the loop to exit (use Done for that).
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed once the loop has exited, whether by terminal condition
// or by Stop.
func (t *Task) Done() <-chan struct{} { return t.done }

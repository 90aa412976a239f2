package poll

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"
)

func TestTask_TicksAtInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var ticks atomic.Int32
		task := Start(time.Second, func() Decision {
			ticks.Add(1)
			return Continue
		})

		time.Sleep(3500 * time.Millisecond)
		synctest.Wait()
		if got := ticks.Load(); got != 3 {
			t.Errorf("ticks after 3.5s = %d, want 3", got)
		}

		task.Stop()
		<-task.Done()
	})
}

func TestTask_StopsOnTerminalDecision(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var ticks atomic.Int32
		task := Start(time.Second, func() Decision {
			if ticks.Add(1) == 2 {
				return Stop
			}
			return Continue
		})

		<-task.Done()
		if got := ticks.Load(); got != 2 {
			t.Errorf("ticks = %d, want 2", got)
		}

		// No further ticks after self-termination.
		time.Sleep(5 * time.Second)
		synctest.Wait()
		if got := ticks.Load(); got != 2 {
			t.Errorf("ticks after done = %d, want 2", got)
		}
	})
}

func TestTask_StopIsIdempotent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		task := Start(time.Second, func() Decision { return Continue })

		task.Stop()
		task.Stop()
		<-task.Done()
	})
}

func TestTask_StopBeforeFirstTick(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var ticks atomic.Int32
		task := Start(time.Second, func() Decision {
			ticks.Add(1)
			return Continue
		})

		time.Sleep(500 * time.Millisecond)
		task.Stop()
		<-task.Done()

		if got := ticks.Load(); got != 0 {
			t.Errorf("ticks = %d, want 0 when stopped before first interval", got)
		}
	})
}

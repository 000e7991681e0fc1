package engine

import (
	"sync/atomic"
	"time"
)

// Timer is a cancellable pending callback
type Timer interface {
	// Stop prevents the callback from running, returns false if it already ran or was stopped
	Stop() bool
}

// Clock provides time and one-shot callbacks to effects
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Poster accepts closures for execution on the owning goroutine
type Poster interface {
	Post(fn func()) bool
}

// Immediate runs posted closures inline on the caller's goroutine
// Used where the caller already owns effect state (tests, single-threaded tools)
type Immediate struct{}

// Post runs fn and reports success
func (Immediate) Post(fn func()) bool {
	fn()
	return true
}

// LoopClock provides real time with callbacks delivered on the loop goroutine
type LoopClock struct {
	loop *Loop
}

// NewLoopClock creates a clock whose timers fire on the given loop
func NewLoopClock(loop *Loop) *LoopClock {
	return &LoopClock{loop: loop}
}

// Now returns the current time with monotonic clock reading
func (c *LoopClock) Now() time.Time {
	return time.Now()
}

const (
	timerPending int32 = iota
	timerStopped
	timerFired
)

type loopTimer struct {
	timer *time.Timer
	state atomic.Int32
}

// AfterFunc schedules fn on the loop after d
// A timer stopped after expiry but before its queued callback ran still never runs
func (c *LoopClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		c.loop.Post(func() {
			if t.state.CompareAndSwap(timerPending, timerFired) {
				fn()
			}
		})
	})
	return t
}

func (t *loopTimer) Stop() bool {
	if !t.state.CompareAndSwap(timerPending, timerStopped) {
		return false
	}
	t.timer.Stop()
	return true
}

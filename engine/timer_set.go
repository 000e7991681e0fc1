package engine

import "time"

// TimerID identifies a timer inside a TimerSet, zero is never issued
type TimerID uint64

// TimerSet owns every pending timer of one component
// Teardown is a single CancelAll instead of tracking individual handles in closures
// Not safe for concurrent use: owned by the loop goroutine
type TimerSet struct {
	clock  Clock
	nextID TimerID
	timers map[TimerID]Timer
}

// NewTimerSet creates an empty set scheduling on clock
func NewTimerSet(clock Clock) *TimerSet {
	return &TimerSet{
		clock:  clock,
		timers: make(map[TimerID]Timer),
	}
}

// After schedules fn after d and tracks the handle until it fires or is cancelled
func (s *TimerSet) After(d time.Duration, fn func()) TimerID {
	s.nextID++
	id := s.nextID
	s.timers[id] = s.clock.AfterFunc(d, func() {
		delete(s.timers, id)
		fn()
	})
	return id
}

// Cancel stops a single timer, returns false if it is no longer pending
func (s *TimerSet) Cancel(id TimerID) bool {
	t, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	return t.Stop()
}

// CancelAll stops every pending timer
func (s *TimerSet) CancelAll() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Len returns the number of pending timers
func (s *TimerSet) Len() int {
	return len(s.timers)
}

// Now returns the current time of the underlying clock
func (s *TimerSet) Now() time.Time {
	return s.clock.Now()
}

package engine

import (
	"sync"
	"time"
)

// MockClock provides a controllable time source for testing
// Timers fire synchronously inside Advance on the caller's goroutine
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*mockTimer
}

type mockTimer struct {
	clock *MockClock
	when  time.Time
	seq   uint64
	fn    func()
	done  bool
}

// NewMockClock creates a new mock clock with the given start time
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

// Now returns the current mocked time
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers fn to run once the mocked time reaches now+d
func (m *MockClock) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &mockTimer{
		clock: m,
		when:  m.now.Add(d),
		seq:   m.seq,
		fn:    fn,
	}
	m.pending = append(m.pending, t)
	return t
}

func (t *mockTimer) Stop() bool {
	m := t.clock
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	m.remove(t)
	return true
}

// remove drops t from the pending list, caller holds mu
func (m *MockClock) remove(t *mockTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// next pops the earliest timer due at or before deadline, ties broken by registration order
func (m *MockClock) next(deadline time.Time) *mockTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *mockTimer
	for _, p := range m.pending {
		if p.when.After(deadline) {
			continue
		}
		if best == nil || p.when.Before(best.when) || (p.when.Equal(best.when) && p.seq < best.seq) {
			best = p
		}
	}
	if best == nil {
		m.now = deadline
		return nil
	}

	m.remove(best)
	best.done = true
	if best.when.After(m.now) {
		m.now = best.when
	}
	return best
}

// Advance moves time forward by d, firing due timers in deadline order
// Timers scheduled by callbacks during the advance fire too if they fall inside the window
func (m *MockClock) Advance(d time.Duration) {
	deadline := m.Now().Add(d)
	for {
		t := m.next(deadline)
		if t == nil {
			return
		}
		t.fn()
	}
}

// SetTime jumps to t without firing timers; intended for initial setup only
func (m *MockClock) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Pending returns the number of timers that have neither fired nor been stopped
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// NextDeadline returns the earliest pending deadline relative to now
func (m *MockClock) NextDeadline() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return 0, false
	}
	earliest := m.pending[0].when
	for _, p := range m.pending[1:] {
		if p.when.Before(earliest) {
			earliest = p.when
		}
	}
	return earliest.Sub(m.now), true
}

// Package manifesto reveals the manifesto one block at a time.
package manifesto

import (
	"time"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/engine"
	"github.com/lixenwraith/attention-era/motion"
)

// Options tunes reveal timing, zero values take the defaults
type Options struct {
	InitialDelay time.Duration
	Interval     time.Duration
}

// Typewriter counts revealed blocks; owned by the loop goroutine
type Typewriter struct {
	total    int
	initial  time.Duration
	interval time.Duration

	timers *engine.TimerSet
	pref   motion.Preference
	unsub  func()

	running  bool
	visible  int
	onChange []func(visible int)
}

// New creates a stopped typewriter over total blocks
func New(clock engine.Clock, total int, pref motion.Preference, opts Options) *Typewriter {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = constants.ManifestoInitialDelay
	}
	if opts.Interval <= 0 {
		opts.Interval = constants.ManifestoLineInterval
	}
	return &Typewriter{
		total:    total,
		initial:  opts.InitialDelay,
		interval: opts.Interval,
		timers:   engine.NewTimerSet(clock),
		pref:     pref,
	}
}

// OnChange registers a listener for the visible count
func (w *Typewriter) OnChange(fn func(visible int)) {
	w.onChange = append(w.onChange, fn)
}

// Start schedules the reveal; the first block lands one interval after the initial delay
// With reduced motion everything is shown at once
func (w *Typewriter) Start() {
	if w.running {
		return
	}
	w.running = true
	w.unsub = w.pref.Subscribe(func(reduced bool) {
		if reduced {
			w.Skip()
		}
	})

	if w.pref.Enabled() {
		w.Skip()
		return
	}
	w.timers.After(w.initial+w.interval, w.tick)
}

func (w *Typewriter) tick() {
	if w.visible >= w.total {
		return
	}
	w.set(w.visible + 1)
	if w.visible < w.total {
		w.timers.After(w.interval, w.tick)
	}
}

// Skip reveals every block and cancels the schedule
func (w *Typewriter) Skip() {
	w.timers.CancelAll()
	if w.visible != w.total {
		w.set(w.total)
	}
}

func (w *Typewriter) set(n int) {
	w.visible = n
	for _, fn := range w.onChange {
		fn(n)
	}
}

// Visible returns the number of revealed blocks
func (w *Typewriter) Visible() int {
	return w.visible
}

// Total returns the block count
func (w *Typewriter) Total() int {
	return w.total
}

// Done reports whether every block is visible
func (w *Typewriter) Done() bool {
	return w.visible >= w.total
}

// Pending returns the number of scheduled callbacks
func (w *Typewriter) Pending() int {
	return w.timers.Len()
}

// Stop cancels the schedule and subscriptions, the visible count is kept
func (w *Typewriter) Stop() {
	if !w.running {
		return
	}
	w.running = false
	w.timers.CancelAll()
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
}

// Package glitch drives jittered, self-rescheduling glitch pulses for text elements.
package glitch

import (
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/engine"
	"github.com/lixenwraith/attention-era/motion"
)

// State is the pulse cycle position: Idle -> Scheduled -> Firing -> Resetting -> Scheduled ...
type State uint8

const (
	StateIdle State = iota
	StateScheduled
	StateFiring
	StateResetting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateFiring:
		return "firing"
	case StateResetting:
		return "resetting"
	}
	return "unknown"
}

// Pulse describes one firing and the draws made for it
type Pulse struct {
	At       time.Time
	Duration time.Duration // on-time of this pulse
	Next     time.Duration // delay until the next regular pulse, zero for a double
	Double   bool
}

// Options tunes a Timer, zero values take the package defaults
type Options struct {
	Intensity    Intensity
	DoubleChance float64
	DoubleDelay  time.Duration
	Startup      Range
}

// Timer produces a boolean glitch signal for one text element
// Owned by the loop goroutine
type Timer struct {
	tier    Tier
	rng     *rand.Rand
	timers  *engine.TimerSet
	pref    motion.Preference
	unsub   func()
	startup Range

	doubleChance float64
	doubleDelay  time.Duration
	resetID      engine.TimerID

	running   bool
	state     State
	glitching bool

	onChange []func(bool)
	onPulse  []func(Pulse)
}

// New creates a stopped Timer; rng must not be shared with another goroutine
func New(clock engine.Clock, rng *rand.Rand, pref motion.Preference, opts Options) *Timer {
	if opts.DoubleDelay <= 0 {
		opts.DoubleDelay = constants.GlitchDoubleDelay
	}
	if opts.Startup == (Range{}) {
		opts.Startup = Range{0, constants.GlitchStartupMax}
	}
	if opts.DoubleChance < 0 {
		opts.DoubleChance = 0
	}

	return &Timer{
		tier:         TierFor(opts.Intensity),
		rng:          rng,
		timers:       engine.NewTimerSet(clock),
		pref:         pref,
		startup:      opts.Startup,
		doubleChance: opts.DoubleChance,
		doubleDelay:  opts.DoubleDelay,
	}
}

// NewDefault creates a Timer with the original double-glitch behavior
func NewDefault(clock engine.Clock, rng *rand.Rand, pref motion.Preference, intensity Intensity) *Timer {
	return New(clock, rng, pref, Options{
		Intensity:    intensity,
		DoubleChance: constants.GlitchDoubleChance,
	})
}

// OnChange registers a listener for glitching flips
func (t *Timer) OnChange(fn func(glitching bool)) {
	t.onChange = append(t.onChange, fn)
}

// OnPulse registers a listener receiving every pulse draw
func (t *Timer) OnPulse(fn func(Pulse)) {
	t.onPulse = append(t.onPulse, fn)
}

// Glitching reports the current pulse signal
func (t *Timer) Glitching() bool {
	return t.glitching
}

// State returns the cycle position
func (t *Timer) State() State {
	return t.state
}

// Tier returns the timing profile in use
func (t *Timer) Tier() Tier {
	return t.tier
}

// Pending returns the number of scheduled callbacks
func (t *Timer) Pending() int {
	return t.timers.Len()
}

// Start begins the pulse cycle unless reduced motion is on
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.running = true
	t.unsub = t.pref.Subscribe(t.motionChanged)

	if !t.pref.Enabled() {
		t.scheduleFirst()
	}
}

// Stop cancels every pending callback, no listener is notified afterwards
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	t.timers.CancelAll()
	if t.unsub != nil {
		t.unsub()
		t.unsub = nil
	}
	t.resetID = 0
	t.glitching = false
	t.state = StateIdle
}

func (t *Timer) scheduleFirst() {
	t.timers.After(t.startup.Draw(t.rng), func() { t.fire(false) })
	t.state = StateScheduled
}

func (t *Timer) fire(double bool) {
	var next time.Duration
	if !double {
		next = t.tier.Interval.Draw(t.rng)
		t.timers.After(next, func() { t.fire(false) })

		// A pulse landing on an active one is dropped, the cadence continues
		if t.glitching {
			return
		}
	}

	// A double lands while its pulse is still on and restarts the on-time from now
	duration := t.tier.Pulse.Draw(t.rng)
	if t.resetID != 0 {
		t.timers.Cancel(t.resetID)
	}
	t.state = StateFiring
	t.setGlitching(true)
	t.resetID = t.timers.After(duration, t.reset)
	if !double && t.rng.Float64() < t.doubleChance {
		t.timers.After(t.doubleDelay, func() { t.fire(true) })
	}

	pulse := Pulse{At: t.timers.Now(), Duration: duration, Next: next, Double: double}
	for _, fn := range t.onPulse {
		fn(pulse)
	}
}

func (t *Timer) reset() {
	t.resetID = 0
	t.state = StateResetting
	t.setGlitching(false)
	t.state = StateScheduled
}

func (t *Timer) motionChanged(reduced bool) {
	if !t.running {
		return
	}
	if reduced {
		t.timers.CancelAll()
		t.resetID = 0
		t.setGlitching(false)
		t.state = StateIdle
		return
	}
	if t.state == StateIdle {
		t.scheduleFirst()
	}
}

func (t *Timer) setGlitching(on bool) {
	if t.glitching == on {
		return
	}
	t.glitching = on
	for _, fn := range t.onChange {
		fn(on)
	}
}

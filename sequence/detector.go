// Package sequence detects the glitch-storm trigger phrase in recent keystrokes.
package sequence

import (
	"strings"
	"time"
	"unicode"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/engine"
)

// State is the detector mode
type State uint8

const (
	StateIdle State = iota
	StateStormActive
)

func (s State) String() string {
	if s == StateStormActive {
		return "storm"
	}
	return "idle"
}

// Options configures a Detector, zero values take the defaults
type Options struct {
	Target   string
	Duration time.Duration
}

// Detector watches a rolling buffer of uppercased keys for the target phrase
// A match while the storm is active re-arms the reset timer from the latest match
// Owned by the loop goroutine
type Detector struct {
	target   string
	duration time.Duration
	timers   *engine.TimerSet

	buffer     []rune
	state      State
	highlights map[rune]bool
	resetID    engine.TimerID

	onChange []func(active bool)
}

// NewDetector creates an idle detector
func NewDetector(clock engine.Clock, opts Options) *Detector {
	if opts.Target == "" {
		opts.Target = constants.StormPhrase
	}
	opts.Target = strings.ToUpper(opts.Target)
	opts.Duration = ClampDuration(opts.Duration)

	return &Detector{
		target:     opts.Target,
		duration:   opts.Duration,
		timers:     engine.NewTimerSet(clock),
		buffer:     make([]rune, 0, constants.KeyBufferSize+1),
		highlights: make(map[rune]bool),
	}
}

// ClampDuration keeps the storm window inside its documented bounds, zero means default
func ClampDuration(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return constants.StormDuration
	case d < constants.StormDurationMin:
		return constants.StormDurationMin
	case d > constants.StormDurationMax:
		return constants.StormDurationMax
	}
	return d
}

// OnChange registers a listener for storm start and end
func (d *Detector) OnChange(fn func(active bool)) {
	d.onChange = append(d.onChange, fn)
}

// Feed appends one keystroke, returns true if it completed the phrase
func (d *Detector) Feed(r rune) bool {
	key := unicode.ToUpper(r)

	d.buffer = append(d.buffer, key)
	if over := len(d.buffer) - constants.KeyBufferSize; over > 0 {
		d.buffer = append(d.buffer[:0], d.buffer[over:]...)
	}

	if strings.ContainsRune(d.target, key) {
		d.highlights[key] = true
	}

	if !strings.Contains(string(d.buffer), d.target) {
		return false
	}

	d.buffer = d.buffer[:0]
	for _, t := range d.target {
		d.highlights[t] = true
	}

	if d.resetID != 0 {
		d.timers.Cancel(d.resetID)
	}
	d.resetID = d.timers.After(d.duration, d.endStorm)

	if d.state != StateStormActive {
		d.state = StateStormActive
		d.notify(true)
	}
	return true
}

func (d *Detector) endStorm() {
	d.resetID = 0
	d.state = StateIdle
	clear(d.highlights)
	d.notify(false)
}

func (d *Detector) notify(active bool) {
	for _, fn := range d.onChange {
		fn(active)
	}
}

// Active reports whether a storm is running
func (d *Detector) Active() bool {
	return d.state == StateStormActive
}

// State returns the detector mode
func (d *Detector) State() State {
	return d.state
}

// Buffer returns the current keystroke history
func (d *Detector) Buffer() string {
	return string(d.buffer)
}

// Target returns the uppercased trigger phrase
func (d *Detector) Target() string {
	return d.target
}

// Highlights returns a copy of the lit target letters
func (d *Detector) Highlights() map[rune]bool {
	out := make(map[rune]bool, len(d.highlights))
	for k, v := range d.highlights {
		out[k] = v
	}
	return out
}

// Lit reports whether a target letter is highlighted
func (d *Detector) Lit(r rune) bool {
	return d.highlights[unicode.ToUpper(r)]
}

// Stop cancels the pending storm reset
func (d *Detector) Stop() {
	d.timers.CancelAll()
	d.resetID = 0
}

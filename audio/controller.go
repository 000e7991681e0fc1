// Package audio runs the looping background track under an autoplay policy.
package audio

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/lixenwraith/attention-era/constants"
	"go.uber.org/zap"
)

// mounted guards the process-wide output device
var mounted atomic.Bool

// Options configures a Controller, zero values take the defaults
type Options struct {
	Volume             float64
	MaxGestureAttempts int
	StartMuted         bool
	Logger             *zap.Logger
}

// Controller owns the background track and its play state
// Only one controller may be started per process
type Controller struct {
	mu      sync.Mutex
	backend Backend
	track   *Track
	logger  *zap.Logger

	ctrl   *beep.Ctrl
	volume *effects.Volume

	maxAttempts int
	level       float64

	started      bool // holds the mount guard
	playing      bool
	muted        bool
	interacted   bool
	needsGesture bool
	attempts     int
	closed       bool
}

// NewController creates a controller for track on backend, nothing plays until Start
func NewController(backend Backend, track *Track, opts Options) *Controller {
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = constants.AudioVolume
	}
	if opts.MaxGestureAttempts <= 0 {
		opts.MaxGestureAttempts = constants.AudioMaxGestureAttempts
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		backend:     backend,
		track:       track,
		logger:      opts.Logger,
		maxAttempts: opts.MaxGestureAttempts,
		level:       opts.Volume,
		muted:       opts.StartMuted,
	}
}

// newVolume wraps s at a linear level on a log2 scale
func newVolume(s beep.Streamer, level float64, silent bool) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2, Silent: silent || level <= 0}
	if level > 0 {
		v.Volume = math.Log2(level)
	}
	return v
}

// Start mounts the track and issues the autoplay request
// A rejected request is a Blocked result, the error return is reserved for misuse
func (c *Controller) Start() (PlayResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return PlayResult{}, ErrNotMounted
	}
	if c.started {
		return PlayResult{}, ErrAlreadyMounted
	}
	if !mounted.CompareAndSwap(false, true) {
		return PlayResult{}, ErrAlreadyMounted
	}
	c.started = true

	c.ctrl = &beep.Ctrl{Streamer: c.track.Streamer}
	c.volume = newVolume(c.ctrl, c.level, c.muted)

	return c.play(false), nil
}

// EnableFromGesture retries playback under a user gesture
// Attempts are bounded, past the bound the call-to-action is withdrawn
func (c *Controller) EnableFromGesture() PlayResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.interacted = true
	if !c.started || c.closed {
		return PlayResult{Outcome: OutcomeBlocked, Reason: ErrNotMounted}
	}
	if c.playing {
		return PlayResult{Outcome: OutcomeStarted}
	}
	if c.attempts >= c.maxAttempts {
		c.needsGesture = false
		return PlayResult{Outcome: OutcomeBlocked, Reason: ErrAttemptsExhausted}
	}
	c.attempts++
	return c.play(true)
}

// NoteInteraction records any user gesture; while blocked it doubles as a play attempt
func (c *Controller) NoteInteraction() {
	c.mu.Lock()
	c.interacted = true
	retry := c.needsGesture && !c.playing
	c.mu.Unlock()

	if retry {
		c.EnableFromGesture()
	}
}

// play requires c.mu held
func (c *Controller) play(gesture bool) PlayResult {
	err := c.backend.Play(c.volume, gesture)
	if err == nil {
		c.playing = true
		c.needsGesture = false
		c.logger.Info("background audio started",
			zap.String("track", c.track.Name), zap.Bool("gesture", gesture))
		return PlayResult{Outcome: OutcomeStarted}
	}

	c.needsGesture = c.attempts < c.maxAttempts
	if errors.Is(err, ErrGestureRequired) {
		c.logger.Debug("autoplay rejected", zap.Int("attempts", c.attempts))
	} else {
		c.logger.Info("audio playback unavailable", zap.Int("attempts", c.attempts), zap.Error(err))
	}
	return PlayResult{Outcome: OutcomeBlocked, Reason: err}
}

// ToggleMute flips the mute state and returns the new value
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.muted = !c.muted
	if c.volume != nil {
		muted := c.muted || c.level <= 0
		c.backend.Do(func() { c.volume.Silent = muted })
	}
	return c.muted
}

// NeedsGesture reports whether the "enable sound" control should be shown
func (c *Controller) NeedsGesture() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsGesture
}

// State returns a snapshot of the play state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Playing:           c.playing,
		Muted:             c.muted,
		HasUserInteracted: c.interacted,
		NeedsGesture:      c.needsGesture,
		Attempts:          c.attempts,
	}
}

// Close pauses playback, releases the device and track and frees the mount guard
// Safe to call more than once
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.ctrl != nil {
		c.backend.Do(func() { c.ctrl.Paused = true })
	}
	c.backend.Close()
	if err := c.track.Close(); err != nil {
		c.logger.Debug("close track", zap.Error(err))
	}
	c.playing = false
	c.needsGesture = false

	if c.started {
		c.started = false
		mounted.Store(false)
	}
}

// Paused reports whether the stream is paused, true before Start
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctrl == nil {
		return true
	}
	paused := true
	c.backend.Do(func() { paused = c.ctrl.Paused })
	return paused
}

package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome is the result of a play request
// Blocked is an anticipated outcome of autoplay policy, not an error
type Outcome uint8

const (
	OutcomeStarted Outcome = iota
	OutcomeBlocked
)

func (o Outcome) String() string {
	if o == OutcomeStarted {
		return "started"
	}
	return "blocked"
}

// PlayResult reports a play attempt; Reason explains a Blocked outcome
type PlayResult struct {
	Outcome Outcome
	Reason  error
}

// Started reports whether playback is running
func (r PlayResult) Started() bool {
	return r.Outcome == OutcomeStarted
}

// Policy models the platform autoplay gate
type Policy uint8

const (
	// PolicyAllow lets playback start without a gesture
	PolicyAllow Policy = iota
	// PolicyGesture rejects playback until the first user gesture
	PolicyGesture
)

func (p Policy) String() string {
	if p == PolicyGesture {
		return "gesture"
	}
	return "allow"
}

// ParsePolicy maps a config name to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gesture":
		return PolicyGesture, nil
	case "allow":
		return PolicyAllow, nil
	}
	return PolicyGesture, fmt.Errorf("unknown autoplay policy %q", s)
}

// Sentinel errors
var (
	ErrAlreadyMounted    = errors.New("background audio already mounted")
	ErrNotMounted        = errors.New("background audio not mounted")
	ErrGestureRequired   = errors.New("playback requires a user gesture")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrAttemptsExhausted = errors.New("gesture play attempts exhausted")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// State is the externally visible playback state
type State struct {
	Playing           bool
	Muted             bool
	HasUserInteracted bool
	NeedsGesture      bool // "enable sound" call-to-action is shown
	Attempts          int  // gesture-driven play attempts so far
}

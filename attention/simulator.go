// Package attention simulates the decorative "attention score" counter.
package attention

import (
	"math/rand/v2"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/engine"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display convention: '.' groups thousands, ',' separates two decimals
var printer = message.NewPrinter(language.German)

// Format renders a score for display, e.g. 1234567.5 -> "1.234.567,50"
func Format(score float64) string {
	return printer.Sprintf("%.2f", score)
}

// Simulator holds the score and its two mutation sources
// The score is unbounded in both directions
// Owned by the loop goroutine
type Simulator struct {
	rng      *rand.Rand
	timers   *engine.TimerSet
	score    float64
	running  bool
	onChange []func(float64)
}

// NewSimulator creates a stopped simulator at the seed value
func NewSimulator(clock engine.Clock, rng *rand.Rand) *Simulator {
	return &Simulator{
		rng:    rng,
		timers: engine.NewTimerSet(clock),
		score:  constants.AttentionSeed,
	}
}

// Score returns the raw value
func (s *Simulator) Score() float64 {
	return s.score
}

// Formatted returns the display string
func (s *Simulator) Formatted() string {
	return Format(s.score)
}

// OnChange registers a listener for score updates
func (s *Simulator) OnChange(fn func(score float64)) {
	s.onChange = append(s.onChange, fn)
}

// Increment is called on every user gesture; only some calls move the score
// Returns true if the score changed
func (s *Simulator) Increment() bool {
	if s.rng.Float64() >= constants.AttentionInteractionChance {
		return false
	}
	s.apply((s.rng.Float64() - constants.AttentionInteractionBias) * constants.AttentionInteractionScale)
	return true
}

// Start begins the fixed-period drift
func (s *Simulator) Start() {
	if s.running {
		return
	}
	s.running = true
	s.scheduleDrift()
}

// Stop cancels the drift timer
func (s *Simulator) Stop() {
	s.running = false
	s.timers.CancelAll()
}

func (s *Simulator) scheduleDrift() {
	s.timers.After(constants.AttentionDriftInterval, func() {
		s.apply((s.rng.Float64() - constants.AttentionDriftBias) * constants.AttentionDriftScale)
		if s.running {
			s.scheduleDrift()
		}
	})
}

func (s *Simulator) apply(delta float64) {
	s.score += delta
	for _, fn := range s.onChange {
		fn(s.score)
	}
}

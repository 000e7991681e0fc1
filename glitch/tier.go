package glitch

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/lixenwraith/attention-era/constants"
)

// ErrInvalidTier is returned for unknown intensity names
var ErrInvalidTier = errors.New("invalid glitch intensity")

// Intensity selects a tier of pulse frequency
type Intensity uint8

const (
	Low Intensity = iota
	Medium
	High
)

func (i Intensity) String() string {
	switch i {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return fmt.Sprintf("intensity(%d)", uint8(i))
}

// ParseIntensity maps a config name to an Intensity
func ParseIntensity(s string) (Intensity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "", "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return Medium, fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// Range is an inclusive duration window drawn at millisecond granularity
type Range struct {
	Min, Max time.Duration
}

// Draw returns an independent uniform sample in [Min, Max]
func (r Range) Draw(rng *rand.Rand) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	span := int64((r.Max - r.Min) / time.Millisecond)
	return r.Min + time.Duration(rng.Int64N(span+1))*time.Millisecond
}

// Contains reports whether d lies inside the window
func (r Range) Contains(d time.Duration) bool {
	return d >= r.Min && d <= r.Max
}

// Tier is the timing profile of one intensity
type Tier struct {
	Interval Range // gap between pulse starts
	Pulse    Range // how long a pulse stays on
}

var tiers = [...]Tier{
	Low: {
		Interval: Range{constants.GlitchLowIntervalMin, constants.GlitchLowIntervalMax},
		Pulse:    Range{constants.GlitchLowPulseMin, constants.GlitchLowPulseMax},
	},
	Medium: {
		Interval: Range{constants.GlitchMediumIntervalMin, constants.GlitchMediumIntervalMax},
		Pulse:    Range{constants.GlitchMediumPulseMin, constants.GlitchMediumPulseMax},
	},
	High: {
		Interval: Range{constants.GlitchHighIntervalMin, constants.GlitchHighIntervalMax},
		Pulse:    Range{constants.GlitchHighPulseMin, constants.GlitchHighPulseMax},
	},
}

// TierFor returns the timing profile, unknown intensities fall back to Medium
func TierFor(i Intensity) Tier {
	if int(i) >= len(tiers) {
		return tiers[Medium]
	}
	return tiers[i]
}

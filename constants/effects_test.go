package constants

import (
	"testing"
	"time"
)

// TestGlitchTierOrdering verifies high intensity pulses more often than low
func TestGlitchTierOrdering(t *testing.T) {
	ranges := []struct {
		name     string
		min, max time.Duration
	}{
		{"low interval", GlitchLowIntervalMin, GlitchLowIntervalMax},
		{"medium interval", GlitchMediumIntervalMin, GlitchMediumIntervalMax},
		{"high interval", GlitchHighIntervalMin, GlitchHighIntervalMax},
		{"low pulse", GlitchLowPulseMin, GlitchLowPulseMax},
		{"medium pulse", GlitchMediumPulseMin, GlitchMediumPulseMax},
		{"high pulse", GlitchHighPulseMin, GlitchHighPulseMax},
	}
	for _, r := range ranges {
		if r.min <= 0 || r.min > r.max {
			t.Errorf("%s: invalid range [%v, %v]", r.name, r.min, r.max)
		}
	}

	if !(GlitchHighIntervalMax < GlitchMediumIntervalMax && GlitchMediumIntervalMax < GlitchLowIntervalMax) {
		t.Error("Interval upper bounds must shrink with intensity")
	}
	if GlitchHighPulseMax >= GlitchHighIntervalMin {
		t.Error("High tier pulse must end before the next pulse can start")
	}
}

func TestStormWindow(t *testing.T) {
	if StormDuration < StormDurationMin || StormDuration > StormDurationMax {
		t.Errorf("Default storm duration %v outside [%v, %v]", StormDuration, StormDurationMin, StormDurationMax)
	}
	if len(StormPhrase) > KeyBufferSize {
		t.Errorf("Storm phrase %q does not fit the %d key buffer", StormPhrase, KeyBufferSize)
	}
}

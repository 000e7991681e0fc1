package constants

import "time"

// Glitch Timer tiers
const (
	// GlitchStartupMax bounds the random delay before the first pulse
	GlitchStartupMax = 500 * time.Millisecond

	GlitchLowIntervalMin    = 3000 * time.Millisecond
	GlitchLowIntervalMax    = 7000 * time.Millisecond
	GlitchMediumIntervalMin = 1500 * time.Millisecond
	GlitchMediumIntervalMax = 4000 * time.Millisecond
	GlitchHighIntervalMin   = 800 * time.Millisecond
	GlitchHighIntervalMax   = 2000 * time.Millisecond

	GlitchLowPulseMin    = 300 * time.Millisecond
	GlitchLowPulseMax    = 900 * time.Millisecond
	GlitchMediumPulseMin = 300 * time.Millisecond
	GlitchMediumPulseMax = 900 * time.Millisecond
	GlitchHighPulseMin   = 200 * time.Millisecond
	GlitchHighPulseMax   = 600 * time.Millisecond

	// GlitchDoubleChance is the probability a pulse gets a rapid second pulse
	GlitchDoubleChance = 0.3

	// GlitchDoubleDelay is the gap between a pulse starting and its rapid follow-up
	GlitchDoubleDelay = 200 * time.Millisecond
)

// Attention Score Simulator
const (
	// AttentionSeed is the score shown before any interaction
	AttentionSeed = 37286.19

	// AttentionInteractionChance is the probability an interaction changes the score
	AttentionInteractionChance = 0.3

	// AttentionInteractionBias and Scale shape the interaction delta: (r - bias) * scale
	AttentionInteractionBias  = 0.3
	AttentionInteractionScale = 100.0

	// AttentionDriftBias and Scale shape the periodic delta: (r - bias) * scale
	AttentionDriftBias  = 0.4
	AttentionDriftScale = 50.0

	// AttentionDriftInterval is the fixed period of the unconditional drift
	AttentionDriftInterval = 5 * time.Second
)

// Key-Sequence Detector
const (
	// StormPhrase is the easter-egg trigger, matched against uppercased keys
	StormPhrase = "CHAOS"

	// KeyBufferSize caps the rolling keystroke history
	KeyBufferSize = 10

	// StormDuration is the default active window of a glitch storm
	StormDuration = 3 * time.Second

	// StormDurationMin and Max bound the configurable storm window
	StormDurationMin = 3 * time.Second
	StormDurationMax = 5 * time.Second
)

// Custom Cursor Renderer
const (
	// CursorTrailLength is the default number of trailing echoes
	CursorTrailLength = 8

	// CursorCompactWidth is the viewport width in columns at or below which the custom cursor is disabled
	CursorCompactWidth = 60
)

// Manifesto Typewriter
const (
	ManifestoInitialDelay = 1 * time.Second
	ManifestoLineInterval = 2 * time.Second
)

package constants

import "time"

// Background audio
const (
	// AudioSampleRate is the speaker rate; decoded tracks are resampled to it
	AudioSampleRate = 48000

	// AudioSpeakerBuffer is the speaker buffer duration
	AudioSpeakerBuffer = 100 * time.Millisecond

	// AudioVolume is the fixed low playback volume (linear gain)
	AudioVolume = 0.2

	// AudioMaxGestureAttempts bounds play retries issued from user gestures
	AudioMaxGestureAttempts = 5

	// AudioResampleQuality is the beep resampler quality
	AudioResampleQuality = 4

	// AudioBeatPeriod is the bar length of the generated synthwave loop (100 BPM)
	AudioBeatPeriod = 600 * time.Millisecond
)

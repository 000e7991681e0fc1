package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/lixenwraith/attention-era/constants"
)

// Backend is the output device under an autoplay policy
type Backend interface {
	SampleRate() beep.SampleRate
	// Play starts s; gesture marks a request issued from a user gesture
	Play(s beep.Streamer, gesture bool) error
	// Do runs fn while the output is not reading streamers
	Do(fn func())
	Close()
}

// SpeakerBackend drives the process-wide beep speaker
type SpeakerBackend struct {
	mu          sync.Mutex
	policy      Policy
	rate        beep.SampleRate
	buffer      time.Duration
	initialized bool
	unlocked    bool
}

// NewSpeakerBackend creates a backend, the device is opened lazily on first allowed play
func NewSpeakerBackend(policy Policy) *SpeakerBackend {
	return &SpeakerBackend{
		policy: policy,
		rate:   beep.SampleRate(constants.AudioSampleRate),
		buffer: constants.AudioSpeakerBuffer,
	}
}

func (b *SpeakerBackend) SampleRate() beep.SampleRate {
	return b.rate
}

func (b *SpeakerBackend) Play(s beep.Streamer, gesture bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gesture {
		b.unlocked = true
	}
	if b.policy == PolicyGesture && !b.unlocked {
		return ErrGestureRequired
	}

	if !b.initialized {
		if err := speaker.Init(b.rate, b.rate.N(b.buffer)); err != nil {
			return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}
		b.initialized = true
	}

	speaker.Clear()
	speaker.Play(s)
	return nil
}

func (b *SpeakerBackend) Do(fn func()) {
	b.mu.Lock()
	initialized := b.initialized
	b.mu.Unlock()

	if !initialized {
		fn()
		return
	}
	speaker.Lock()
	fn()
	speaker.Unlock()
}

func (b *SpeakerBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	b.initialized = false
}

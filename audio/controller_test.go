package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend applies a policy without touching a device
type fakeBackend struct {
	policy   Policy
	failInit error
	unlocked bool
	plays    int
	gestures int
	closed   int
	stream   beep.Streamer
}

func (f *fakeBackend) SampleRate() beep.SampleRate { return 48000 }

func (f *fakeBackend) Play(s beep.Streamer, gesture bool) error {
	f.plays++
	if gesture {
		f.gestures++
		f.unlocked = true
	}
	if f.policy == PolicyGesture && !f.unlocked {
		return ErrGestureRequired
	}
	if f.failInit != nil {
		return f.failInit
	}
	f.stream = s
	return nil
}

func (f *fakeBackend) Do(fn func()) { fn() }
func (f *fakeBackend) Close()       { f.closed++ }

func newTestController(t *testing.T, b *fakeBackend, opts Options) *Controller {
	t.Helper()
	c := NewController(b, SynthTrack(b.SampleRate()), opts)
	t.Cleanup(c.Close)
	return c
}

func TestAutoplayAllowed(t *testing.T) {
	b := &fakeBackend{policy: PolicyAllow}
	c := newTestController(t, b, Options{})

	res, err := c.Start()
	require.NoError(t, err)
	assert.True(t, res.Started())
	assert.False(t, c.NeedsGesture(), "only mute remains once playing")
	assert.True(t, c.State().Playing)
}

func TestBlockedThenGestureStarts(t *testing.T) {
	b := &fakeBackend{policy: PolicyGesture}
	c := newTestController(t, b, Options{})

	res, err := c.Start()
	require.NoError(t, err, "autoplay rejection is not an error")
	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.ErrorIs(t, res.Reason, ErrGestureRequired)
	assert.True(t, c.NeedsGesture())
	assert.Equal(t, 1, b.plays, "no retry without a gesture")

	res = c.EnableFromGesture()
	assert.True(t, res.Started())
	assert.False(t, c.NeedsGesture())

	st := c.State()
	assert.True(t, st.Playing)
	assert.True(t, st.HasUserInteracted)
	assert.Equal(t, 1, st.Attempts)

	// Further gestures are no-ops
	c.EnableFromGesture()
	assert.Equal(t, 2, b.plays)
}

func TestNoteInteractionRetriesWhileBlocked(t *testing.T) {
	b := &fakeBackend{policy: PolicyGesture}
	c := newTestController(t, b, Options{})

	_, err := c.Start()
	require.NoError(t, err)

	c.NoteInteraction()
	assert.True(t, c.State().Playing)

	c.NoteInteraction()
	assert.Equal(t, 2, b.plays)
}

func TestGestureAttemptsAreBounded(t *testing.T) {
	b := &fakeBackend{policy: PolicyAllow, failInit: errors.New("no device")}
	c := newTestController(t, b, Options{MaxGestureAttempts: 3})

	res, err := c.Start()
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.ErrorIs(t, res.Reason, b.failInit)

	for i := 0; i < 10; i++ {
		res = c.EnableFromGesture()
		assert.Equal(t, OutcomeBlocked, res.Outcome)
	}
	assert.Equal(t, 4, b.plays, "initial request plus three gesture attempts")
	assert.ErrorIs(t, res.Reason, ErrAttemptsExhausted)
	assert.False(t, c.NeedsGesture(), "call-to-action withdrawn once exhausted")
	assert.Equal(t, 3, c.State().Attempts)
}

func TestToggleMute(t *testing.T) {
	b := &fakeBackend{policy: PolicyAllow}
	c := newTestController(t, b, Options{Volume: 0.5})

	_, err := c.Start()
	require.NoError(t, err)
	assert.InDelta(t, -1.0, c.volume.Volume, 1e-9)
	assert.False(t, c.volume.Silent)

	assert.True(t, c.ToggleMute())
	assert.True(t, c.volume.Silent)
	assert.True(t, c.State().Muted)

	assert.False(t, c.ToggleMute())
	assert.False(t, c.volume.Silent)
}

func TestStartMuted(t *testing.T) {
	b := &fakeBackend{policy: PolicyAllow}
	c := newTestController(t, b, Options{StartMuted: true})

	_, err := c.Start()
	require.NoError(t, err)
	assert.True(t, c.volume.Silent)
}

func TestCloseReleasesResources(t *testing.T) {
	b := &fakeBackend{policy: PolicyAllow}
	c := NewController(b, SynthTrack(48000), Options{})

	_, err := c.Start()
	require.NoError(t, err)
	assert.False(t, c.Paused())

	c.Close()
	assert.True(t, c.Paused())
	assert.Equal(t, 1, b.closed)
	assert.False(t, c.State().Playing)

	c.Close()
	assert.Equal(t, 1, b.closed, "close is idempotent")

	_, err = c.Start()
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestSecondControllerFails(t *testing.T) {
	first := NewController(&fakeBackend{policy: PolicyAllow}, SynthTrack(48000), Options{})
	_, err := first.Start()
	require.NoError(t, err)

	second := NewController(&fakeBackend{policy: PolicyAllow}, SynthTrack(48000), Options{})
	_, err = second.Start()
	assert.ErrorIs(t, err, ErrAlreadyMounted)
	second.Close()

	_, err = first.Start()
	assert.ErrorIs(t, err, ErrAlreadyMounted)

	first.Close()

	third := NewController(&fakeBackend{policy: PolicyAllow}, SynthTrack(48000), Options{})
	_, err = third.Start()
	require.NoError(t, err, "guard released on close")
	third.Close()
}

func TestNeonLoopRange(t *testing.T) {
	g := NewNeonLoop(48000)
	buf := make([][2]float64, 48000*3)
	n, ok := g.Stream(buf)
	require.True(t, ok)
	require.Equal(t, len(buf), n)

	var peak float64
	for _, s := range buf {
		assert.Equal(t, s[0], s[1])
		assert.LessOrEqual(t, s[0], 1.0)
		assert.GreaterOrEqual(t, s[0], -1.0)
		if s[0] > peak {
			peak = s[0]
		}
	}
	assert.Greater(t, peak, 0.1, "loop is audible")
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("allow")
	require.NoError(t, err)
	assert.Equal(t, PolicyAllow, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyGesture, p)

	_, err = ParsePolicy("always")
	assert.Error(t, err)
}

func TestLoadFallsBackToSynth(t *testing.T) {
	assert.Equal(t, "synth", Load("", 48000, nil).Name)

	dir := t.TempDir()
	bad := filepath.Join(dir, "track.ogg")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	assert.Equal(t, "synth", Load(bad, 48000, nil).Name)

	_, err := OpenFile(bad, 48000)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	corrupt := filepath.Join(dir, "track.wav")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a riff header"), 0o644))
	_, err = OpenFile(corrupt, 48000)
	assert.Error(t, err)
	assert.Equal(t, "synth", Load(corrupt, 48000, nil).Name)
}

// TestSpeakerBackend exercises the real device when one exists
func TestSpeakerBackend(t *testing.T) {
	b := NewSpeakerBackend(PolicyGesture)
	err := b.Play(NewNeonLoop(b.SampleRate()), false)
	assert.ErrorIs(t, err, ErrGestureRequired)

	err = b.Play(NewNeonLoop(b.SampleRate()), true)
	if err != nil {
		assert.ErrorIs(t, err, ErrDeviceUnavailable)
		t.Logf("no audio device available: %v", err)
		return
	}
	b.Do(func() {})
	b.Close()
}

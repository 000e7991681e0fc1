package motion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/attention-era/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// chanPoster hands closures to the test goroutine, standing in for the loop
type chanPoster chan func()

func (c chanPoster) Post(fn func()) bool {
	c <- fn
	return true
}

func TestTrackerInitialValueFromSource(t *testing.T) {
	on, err := NewTracker(StaticSource(true), engine.Immediate{}, nil)
	require.NoError(t, err)
	assert.True(t, on.Enabled())

	off, err := NewTracker(StaticSource(false), engine.Immediate{}, nil)
	require.NoError(t, err)
	assert.False(t, off.Enabled())
}

func TestTrackerToggleNotifiesSubscribers(t *testing.T) {
	tr, err := NewTracker(StaticSource(false), engine.Immediate{}, nil)
	require.NoError(t, err)

	var got []bool
	cancel := tr.Subscribe(func(reduced bool) { got = append(got, reduced) })

	tr.Toggle()
	assert.True(t, tr.Enabled())
	tr.Set(true) // unchanged, no notification
	tr.Toggle()
	assert.False(t, tr.Enabled())

	cancel()
	tr.Toggle()

	assert.Equal(t, []bool{true, false}, got)
}

func TestTrackerSubscriberMayCancelDuringNotify(t *testing.T) {
	tr, err := NewTracker(StaticSource(false), engine.Immediate{}, nil)
	require.NoError(t, err)

	calls := 0
	var cancel func()
	cancel = tr.Subscribe(func(bool) {
		calls++
		cancel()
	})
	other := 0
	tr.Subscribe(func(bool) { other++ })

	tr.Toggle()
	tr.Toggle()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestEnvSource(t *testing.T) {
	t.Setenv(EnvReducedMotion, "reduce")
	assert.True(t, EnvSource{}.Matches())

	t.Setenv(EnvReducedMotion, "no-preference")
	assert.False(t, EnvSource{}.Matches())

	t.Setenv(EnvReducedMotion, "garbage")
	assert.False(t, EnvSource{}.Matches())
}

func TestParsePreference(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value bool
		ok    bool
	}{
		{"bare true", "true\n", true, true},
		{"bare reduce", "  reduce  ", true, true},
		{"assignment", "# accessibility\nreduced_motion = true\n", true, true},
		{"quoted", `reduced_motion = "false"`, false, true},
		{"media query key", "prefers-reduced-motion=reduce", true, true},
		{"unrelated key skipped", "theme = dark\nreduced_motion = on", true, true},
		{"empty", "", false, false},
		{"unknown", "maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ParsePreference([]byte(tt.input))
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFileSourceWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "motion.pref")
	require.NoError(t, os.WriteFile(path, []byte("reduced_motion = false\n"), 0o644))

	posted := make(chanPoster, 8)
	tr, err := NewTracker(&FileSource{Path: path}, posted, nil)
	require.NoError(t, err)
	defer tr.Close()
	assert.False(t, tr.Enabled())

	changes := 0
	tr.Subscribe(func(bool) { changes++ })

	require.NoError(t, os.WriteFile(path, []byte("reduced_motion = true\n"), 0o644))

	deadline := time.After(3 * time.Second)
	for !tr.Enabled() {
		select {
		case fn := <-posted:
			fn()
		case <-deadline:
			t.Fatal("file change not delivered")
		}
	}
	assert.Equal(t, 1, changes)
	assert.False(t, tr.Overridden())

	// Explicit choice overrides the system value
	tr.Toggle()
	assert.False(t, tr.Enabled())
	assert.True(t, tr.Overridden())
}

// pushSource lets the test fire system preference changes by hand
type pushSource struct {
	initial bool
	fn      func(bool)
}

func (s *pushSource) Name() string  { return "push" }
func (s *pushSource) Matches() bool { return s.initial }
func (s *pushSource) Watch(fn func(bool)) (func(), error) {
	s.fn = fn
	return func() { s.fn = nil }, nil
}

func TestSystemChangesFollowedUntilExplicitChoice(t *testing.T) {
	src := &pushSource{}
	tr, err := NewTracker(src, engine.Immediate{}, nil)
	require.NoError(t, err)
	defer tr.Close()

	var got []bool
	tr.Subscribe(func(reduced bool) { got = append(got, reduced) })

	src.fn(true)
	assert.True(t, tr.Enabled())
	src.fn(false)
	assert.False(t, tr.Enabled())

	tr.Toggle()
	require.True(t, tr.Enabled())

	// The system keeps changing; the explicit toggle holds
	src.fn(true)
	src.fn(false)
	src.fn(false)
	assert.True(t, tr.Enabled())
	assert.Equal(t, []bool{true, false, true}, got)

	tr.Toggle()
	src.fn(true)
	assert.False(t, tr.Enabled())
}

func TestSetIsAnExplicitChoice(t *testing.T) {
	src := &pushSource{initial: true}
	tr, err := NewTracker(src, engine.Immediate{}, nil)
	require.NoError(t, err)
	defer tr.Close()

	tr.Set(true) // same value, still pins the choice
	assert.True(t, tr.Overridden())
	src.fn(false)
	assert.True(t, tr.Enabled())
}

func TestFileSourceMissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "absent")}
	assert.False(t, src.Matches())
}

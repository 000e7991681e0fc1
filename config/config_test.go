package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/attention-era/audio"
	"github.com/lixenwraith/attention-era/glitch"
	"github.com/lixenwraith/attention-era/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attention-era.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, audio.PolicyGesture, cfg.Policy())
	assert.Equal(t, glitch.Medium, cfg.Intensity())
	assert.Equal(t, 0.2, cfg.Audio.Volume)
	assert.Equal(t, 5, cfg.Audio.MaxGestureAttempts)
	assert.Equal(t, 3*time.Second, cfg.Effects.StormDuration)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[audio]
file = "neon.mp3"
autoplay = "allow"
volume = 0.5

[effects]
glitch = "high"
storm_duration = "4s"
reduced_motion = "reduce"

[contact]
addr = "127.0.0.1:9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "neon.mp3", cfg.Audio.File)
	assert.Equal(t, audio.PolicyAllow, cfg.Policy())
	assert.Equal(t, 0.5, cfg.Audio.Volume)
	assert.Equal(t, glitch.High, cfg.Intensity())
	assert.Equal(t, 4*time.Second, cfg.Effects.StormDuration)
	assert.Equal(t, MotionOn, cfg.Effects.ReducedMotion)
	assert.Equal(t, "127.0.0.1:9090", cfg.Contact.Addr)
	assert.Equal(t, 8, cfg.Effects.TrailLength, "unset keys keep defaults")
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "[audio]\nvolumee = 0.1\n",
		"volume":         "[audio]\nvolume = 1.5\n",
		"policy":         "[audio]\nautoplay = \"always\"\n",
		"storm too long": "[effects]\nstorm_duration = \"9s\"\n",
		"tier":           "[effects]\nglitch = \"extreme\"\n",
		"motion":         "[effects]\nreduced_motion = \"sometimes\"\n",
		"syntax":         "[audio\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"ATTENTION_ERA_AUDIO_FILE":     "/tmp/loop.wav",
		"ATTENTION_ERA_AUTOPLAY":       "allow",
		"ATTENTION_ERA_VOLUME":         "0.35",
		"ATTENTION_ERA_ADDR":           ":9999",
		"ATTENTION_ERA_CONTACT_URL":    "http://localhost:9999",
		"ATTENTION_ERA_REDUCED_MOTION": "true",
		"ATTENTION_ERA_GLITCH":         "low",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/loop.wav", cfg.Audio.File)
	assert.Equal(t, audio.PolicyAllow, cfg.Policy())
	assert.Equal(t, 0.35, cfg.Audio.Volume)
	assert.Equal(t, ":9999", cfg.Contact.Addr)
	assert.Equal(t, "http://localhost:9999", cfg.Contact.URL)
	assert.Equal(t, MotionOn, cfg.Effects.ReducedMotion)
	assert.Equal(t, glitch.Low, cfg.Intensity())

	err = Default().ApplyEnv(envMap(map[string]string{"ATTENTION_ERA_VOLUME": "loud"}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMotionSource(t *testing.T) {
	cfg := Default()
	assert.IsType(t, motion.EnvSource{}, cfg.MotionSource(nil))

	cfg.Effects.MotionFile = "/tmp/motion"
	assert.IsType(t, &motion.FileSource{}, cfg.MotionSource(nil))

	cfg.Effects.ReducedMotion = MotionOn
	src := cfg.MotionSource(nil)
	assert.True(t, src.Matches())

	cfg.Effects.ReducedMotion = MotionOff
	assert.False(t, cfg.MotionSource(nil).Matches())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "attention-era.toml")
	cfg := Default()
	cfg.Effects.StormDuration = 5 * time.Second
	cfg.Audio.Autoplay = "allow"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

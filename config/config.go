// Package config loads attention-era.toml and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lixenwraith/attention-era/audio"
	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/glitch"
	"github.com/lixenwraith/attention-era/motion"
	"go.uber.org/zap"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "attention-era.toml"

// EnvPrefix starts every override variable
const EnvPrefix = "ATTENTION_ERA_"

// Reduced motion modes
const (
	MotionAuto = "auto"
	MotionOn   = "on"
	MotionOff  = "off"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Audio   Audio   `toml:"audio"`
	Effects Effects `toml:"effects"`
	Contact Contact `toml:"contact"`
	Content Content `toml:"content"`
	Log     Log     `toml:"log"`
}

type Audio struct {
	File               string  `toml:"file"`
	Autoplay           string  `toml:"autoplay"`
	Volume             float64 `toml:"volume"`
	MaxGestureAttempts int     `toml:"max_gesture_attempts"`
	Muted              bool    `toml:"muted"`
	Disabled           bool    `toml:"disabled"`
}

type Effects struct {
	Glitch        string        `toml:"glitch"`
	ReducedMotion string        `toml:"reduced_motion"`
	MotionFile    string        `toml:"motion_file"`
	StormDuration time.Duration `toml:"storm_duration"`
	TrailLength   int           `toml:"trail_length"`
	CompactWidth  int           `toml:"compact_width"`
}

type Contact struct {
	Addr string `toml:"addr"`
	URL  string `toml:"url"`
}

type Content struct {
	File string `toml:"file"`
}

type Log struct {
	Debug bool   `toml:"debug"`
	Path  string `toml:"path"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Audio: Audio{
			Autoplay:           audio.PolicyGesture.String(),
			Volume:             constants.AudioVolume,
			MaxGestureAttempts: constants.AudioMaxGestureAttempts,
		},
		Effects: Effects{
			Glitch:        glitch.Medium.String(),
			ReducedMotion: MotionAuto,
			StormDuration: constants.StormDuration,
			TrailLength:   constants.CursorTrailLength,
			CompactWidth:  constants.CursorCompactWidth,
		},
		Contact: Contact{
			Addr: ":8080",
		},
		Log: Log{
			Path: filepath.Join("logs", "attention-era.log"),
		},
	}
}

// Load reads path over the defaults, applies the environment and validates
// A missing file at the default path is not an error
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown keys %s in %s", ErrInvalidConfig, strings.Join(keys, ", "), path)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays ATTENTION_ERA_* variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("AUDIO_FILE", &c.Audio.File)
	str("AUTOPLAY", &c.Audio.Autoplay)
	str("ADDR", &c.Contact.Addr)
	str("CONTACT_URL", &c.Contact.URL)
	str("GLITCH", &c.Effects.Glitch)

	if v, ok := lookup(EnvPrefix + "VOLUME"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %sVOLUME=%q: %w", ErrInvalidConfig, EnvPrefix, v, err)
		}
		c.Audio.Volume = f
	}

	if v, ok := lookup(motion.EnvReducedMotion); ok {
		mode, err := parseMotion(v)
		if err != nil {
			return fmt.Errorf("%s: %w", motion.EnvReducedMotion, err)
		}
		c.Effects.ReducedMotion = mode
	}
	return nil
}

func parseMotion(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == MotionAuto {
		return MotionAuto, nil
	}
	reduced, ok := motion.ParseValue(v)
	if !ok {
		return "", fmt.Errorf("%w: reduced motion %q", ErrInvalidConfig, v)
	}
	if reduced {
		return MotionOn, nil
	}
	return MotionOff, nil
}

// Validate normalizes values and rejects the unusable ones
func (c *Config) Validate() error {
	if _, err := audio.ParsePolicy(c.Audio.Autoplay); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: volume %.2f outside [0, 1]", ErrInvalidConfig, c.Audio.Volume)
	}
	if c.Audio.MaxGestureAttempts <= 0 {
		return fmt.Errorf("%w: max_gesture_attempts must be positive", ErrInvalidConfig)
	}
	if _, err := glitch.ParseIntensity(c.Effects.Glitch); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	mode, err := parseMotion(c.Effects.ReducedMotion)
	if err != nil {
		return err
	}
	c.Effects.ReducedMotion = mode

	if d := c.Effects.StormDuration; d < constants.StormDurationMin || d > constants.StormDurationMax {
		return fmt.Errorf("%w: storm_duration %s outside [%s, %s]", ErrInvalidConfig,
			d, constants.StormDurationMin, constants.StormDurationMax)
	}
	if c.Effects.TrailLength <= 0 {
		return fmt.Errorf("%w: trail_length must be positive", ErrInvalidConfig)
	}
	if c.Effects.CompactWidth < 0 {
		return fmt.Errorf("%w: compact_width must not be negative", ErrInvalidConfig)
	}
	if c.Contact.Addr == "" {
		return fmt.Errorf("%w: contact addr is empty", ErrInvalidConfig)
	}
	return nil
}

// Policy returns the parsed autoplay policy
func (c *Config) Policy() audio.Policy {
	p, _ := audio.ParsePolicy(c.Audio.Autoplay)
	return p
}

// Intensity returns the parsed glitch tier
func (c *Config) Intensity() glitch.Intensity {
	i, _ := glitch.ParseIntensity(c.Effects.Glitch)
	return i
}

// MotionSource picks the reduced-motion source for the configured mode
func (c *Config) MotionSource(logger *zap.Logger) motion.Source {
	switch c.Effects.ReducedMotion {
	case MotionOn:
		return motion.StaticSource(true)
	case MotionOff:
		return motion.StaticSource(false)
	}
	if c.Effects.MotionFile != "" {
		return &motion.FileSource{Path: c.Effects.MotionFile, Logger: logger}
	}
	return motion.EnvSource{}
}

// Encode writes c as TOML
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Save writes c as TOML to path, creating parent directories
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

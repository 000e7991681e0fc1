package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
	"github.com/lixenwraith/attention-era/constants"
	"go.uber.org/zap"
)

// Track is a looping background streamer and the resource backing it
type Track struct {
	Name     string
	Streamer beep.Streamer
	closer   io.Closer
}

// Close releases the decoder and file, if any
func (t *Track) Close() error {
	if t == nil || t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	return err
}

// OpenFile decodes a WAV or MP3 file into an endless loop at the output rate
func OpenFile(path string, rate beep.SampleRate) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	var s beep.Streamer = beep.Loop(-1, stream)
	if format.SampleRate != rate {
		s = beep.Resample(constants.AudioResampleQuality, format.SampleRate, rate, s)
	}

	return &Track{
		Name:     filepath.Base(path),
		Streamer: s,
		closer:   multiCloser{stream, f},
	}, nil
}

// Load opens path, falling back to the generated loop when path is empty or unusable
func Load(path string, rate beep.SampleRate, logger *zap.Logger) *Track {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return SynthTrack(rate)
	}
	t, err := OpenFile(path, rate)
	if err != nil {
		logger.Warn("background track unavailable, using generated loop",
			zap.String("path", path), zap.Error(err))
		return SynthTrack(rate)
	}
	return t
}

// SynthTrack returns the generated neon loop
func SynthTrack(rate beep.SampleRate) *Track {
	return &Track{Name: "synth", Streamer: NewNeonLoop(rate)}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// bassline roots in Hz, one per bar of four beats: Am F C G
var bassline = [...]float64{110.00, 87.31, 130.81, 98.00}

// NeonLoop is an endless kick and walking bass pattern
type NeonLoop struct {
	sr      beep.SampleRate
	pos     int
	beat    int
	kickLen int
}

// NewNeonLoop creates the generated background loop
func NewNeonLoop(sr beep.SampleRate) *NeonLoop {
	return &NeonLoop{
		sr:      sr,
		beat:    sr.N(constants.AudioBeatPeriod),
		kickLen: sr.N(100 * time.Millisecond),
	}
}

func (g *NeonLoop) Stream(samples [][2]float64) (n int, ok bool) {
	bar := 4 * g.beat
	for i := range samples {
		beatPos := g.pos % g.beat
		t := float64(g.pos) / float64(g.sr)
		tb := float64(beatPos) / float64(g.sr)

		kick := 0.0
		if beatPos < g.kickLen {
			env := 1.0 - float64(beatPos)/float64(g.kickLen)
			kick = 0.4 * env * math.Sin(2*math.Pi*60*(1+2*env)*tb)
		}

		root := bassline[(g.pos/bar)%len(bassline)]
		// Off-beat octave pump
		pump := 0.6 + 0.4*float64(beatPos)/float64(g.beat)
		bass := 0.15 * pump * math.Sin(2*math.Pi*root*t)
		pad := 0.04 * math.Sin(2*math.Pi*root*3*t) * (0.5 + 0.5*math.Sin(2*math.Pi*0.25*t))

		sample := kick + bass + pad
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *NeonLoop) Err() error {
	return nil
}

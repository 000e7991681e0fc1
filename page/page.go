// Package page composes the effects into the scrolling terminal page.
package page

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/attention"
	"github.com/lixenwraith/attention-era/audio"
	"github.com/lixenwraith/attention-era/console"
	"github.com/lixenwraith/attention-era/contact"
	"github.com/lixenwraith/attention-era/content"
	"github.com/lixenwraith/attention-era/cursor"
	"github.com/lixenwraith/attention-era/engine"
	"github.com/lixenwraith/attention-era/glitch"
	"github.com/lixenwraith/attention-era/manifesto"
	"github.com/lixenwraith/attention-era/motion"
	"github.com/lixenwraith/attention-era/overlay"
	"github.com/lixenwraith/attention-era/render"
	"github.com/lixenwraith/attention-era/sequence"
	"github.com/lixenwraith/attention-era/status"
	"go.uber.org/zap"
)

// ErrAlreadyMounted is returned when a second page is mounted in the process
var ErrAlreadyMounted = errors.New("page already mounted")

var mounted atomic.Bool

// Audio is the background audio surface the page drives
type Audio interface {
	Start() (audio.PlayResult, error)
	EnableFromGesture() audio.PlayResult
	NoteInteraction()
	ToggleMute() bool
	State() audio.State
	Close()
}

// Submitter delivers contact form submissions
type Submitter interface {
	Submit(ctx context.Context, s contact.Submission) (*contact.Ack, error)
}

// Options wires the page; Screen, Clock, Poster and Motion are required
type Options struct {
	Screen  tcell.Screen
	Clock   engine.Clock
	Poster  engine.Poster
	Motion  *motion.Tracker
	Audio   Audio
	Content *content.Document
	Contact Submitter
	Logger  *zap.Logger
	Metrics *status.Registry

	Seed          uint64
	Intensity     glitch.Intensity
	StormDuration time.Duration
	TrailLength   int
	CompactWidth  int
}

// glitch targets, hero first
const (
	targetHero = iota
	targetAbout
	targetLore
	targetMemes
	targetManifesto
	targetContact
	targetCount
)

// Page owns every effect component; all methods run on the loop goroutine
type Page struct {
	screen tcell.Screen
	canvas *render.Canvas
	clock  engine.Clock
	poster engine.Poster
	logger *zap.Logger
	doc    *content.Document

	motion     *motion.Tracker
	overlays   *overlay.Manager
	cursor     *cursor.Renderer
	detector   *sequence.Detector
	score      *attention.Simulator
	glitches   [targetCount]*glitch.Timer
	typewriter *manifesto.Typewriter
	console    *console.Console
	audio      Audio
	flash      *overlay.Handle
	unsub      func()

	form      form
	submitter Submitter
	ctx       context.Context
	cancel    context.CancelFunc

	metrics *status.Registry
	stats   pageStats

	rng     *rand.Rand
	focus   Focus
	scroll  int
	docH    int
	anchors map[string]int
	root    *cursor.Node
	pressed bool
	dirty   bool
	active  bool
}

// New builds an unmounted page
func New(opts Options) (*Page, error) {
	if opts.Screen == nil || opts.Clock == nil || opts.Poster == nil || opts.Motion == nil {
		return nil, errors.New("page: screen, clock, poster and motion are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Content == nil {
		opts.Content = content.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = status.NewRegistry()
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(opts.Clock.Now().UnixNano())
	}

	seed := func(stream uint64) *rand.Rand {
		return rand.New(rand.NewPCG(opts.Seed, stream))
	}

	overlays := overlay.NewManager(opts.Screen)
	p := &Page{
		screen:    opts.Screen,
		canvas:    render.NewCanvas(opts.Screen),
		clock:     opts.Clock,
		poster:    opts.Poster,
		logger:    opts.Logger,
		doc:       opts.Content,
		motion:    opts.Motion,
		overlays:  overlays,
		audio:     opts.Audio,
		submitter: opts.Contact,
		metrics:   opts.Metrics,
		stats:     newPageStats(opts.Metrics),
		rng:       seed(0),
		anchors:   make(map[string]int),
		dirty:     true,
	}

	p.cursor = cursor.New(overlays, opts.Motion, cursor.Options{
		TrailLength:  opts.TrailLength,
		CompactWidth: opts.CompactWidth,
	})
	p.detector = sequence.NewDetector(opts.Clock, sequence.Options{Duration: opts.StormDuration})
	p.score = attention.NewSimulator(opts.Clock, seed(1))
	for i := range p.glitches {
		intensity := glitch.Low
		if i == targetHero {
			intensity = opts.Intensity
		}
		p.glitches[i] = glitch.NewDefault(opts.Clock, seed(uint64(10+i)), opts.Motion, intensity)
		p.glitches[i].OnChange(func(bool) { p.dirty = true })
	}
	p.typewriter = manifesto.New(opts.Clock, len(opts.Content.Manifesto.Blocks), opts.Motion, manifesto.Options{})
	p.console = console.New(opts.Clock, seed(2), opts.Content.Console)

	p.score.OnChange(func(score float64) {
		p.stats.score.Set(score)
		p.dirty = true
	})
	p.typewriter.OnChange(func(int) { p.dirty = true })
	p.detector.OnChange(p.stormChanged)
	p.console.Register("stats", "Show session counters", func(*console.Console, []string) string {
		p.syncStats()
		return "SESSION COUNTERS:\n" + p.metrics.Format()
	})

	return p, nil
}

// pageStats caches the registry entries the page writes
type pageStats struct {
	gestures, frames, storms *atomic.Int64
	sent, failed             *atomic.Int64
	stormActive, reduced     *atomic.Bool
	audioPlaying             *atomic.Bool
	score                    *status.AtomicFloat
}

func newPageStats(r *status.Registry) pageStats {
	return pageStats{
		gestures:     r.Ints.Get(status.Gestures),
		frames:       r.Ints.Get(status.Frames),
		storms:       r.Ints.Get(status.Storms),
		sent:         r.Ints.Get(status.FormsSent),
		failed:       r.Ints.Get(status.FormsFailed),
		stormActive:  r.Bools.Get(status.StormActive),
		reduced:      r.Bools.Get(status.ReducedMotion),
		audioPlaying: r.Bools.Get(status.AudioPlaying),
		score:        r.Floats.Get(status.Score),
	}
}

// syncStats refreshes the readings that are polled rather than pushed
func (p *Page) syncStats() {
	p.stats.score.Set(p.score.Score())
	p.stats.reduced.Store(p.motion.Enabled())
	if p.audio != nil {
		p.stats.audioPlaying.Store(p.audio.State().Playing)
	}
}

// Mount acquires the process-wide resources and starts every effect
// Autoplay is requested immediately; a block only shows the enable-sound control
func (p *Page) Mount() error {
	if !mounted.CompareAndSwap(false, true) {
		return ErrAlreadyMounted
	}

	w, _ := p.screen.Size()
	if err := p.cursor.Mount(w); err != nil {
		mounted.Store(false)
		return fmt.Errorf("mount page: %w", err)
	}
	flash, err := p.overlays.Acquire(overlay.KindStormFlash)
	if err != nil {
		p.cursor.Unmount()
		mounted.Store(false)
		return fmt.Errorf("mount page: %w", err)
	}
	p.flash = flash
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.unsub = p.motion.Subscribe(p.motionChanged)
	p.score.Start()
	for _, g := range p.glitches {
		g.Start()
	}
	p.typewriter.Start()

	if p.audio != nil {
		res, err := p.audio.Start()
		switch {
		case err != nil:
			p.logger.Warn("background audio not started", zap.Error(err))
		case !res.Started():
			p.logger.Debug("autoplay blocked, waiting for a gesture", zap.Error(res.Reason))
		}
	}

	p.active = true
	p.dirty = true
	p.logger.Info("page mounted", zap.Int("width", w), zap.Bool("reduced_motion", p.motion.Enabled()))
	return nil
}

// Unmount cancels every timer and listener and releases the global resources
// Safe to call on an unmounted page
func (p *Page) Unmount() {
	if !p.active {
		return
	}
	p.active = false

	p.cancel()
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
	p.score.Stop()
	for _, g := range p.glitches {
		g.Stop()
	}
	p.typewriter.Stop()
	p.detector.Stop()
	p.console.Stop()
	p.flash.Release()
	p.flash = nil
	p.cursor.Unmount()
	if p.audio != nil {
		p.audio.Close()
	}

	mounted.Store(false)
	p.logger.Info("page unmounted")
}

func (p *Page) stormChanged(active bool) {
	if p.flash != nil {
		p.flash.Set(active && !p.motion.Enabled())
	}
	p.stats.stormActive.Store(active)
	if active {
		p.stats.storms.Add(1)
		p.logger.Debug("glitch storm triggered")
	}
	p.dirty = true
}

func (p *Page) motionChanged(reduced bool) {
	if p.flash != nil {
		p.flash.Set(p.detector.Active() && !reduced)
	}
	p.dirty = true
}

// Frame redraws when something changed or a glitch is running
func (p *Page) Frame() {
	if !p.active {
		return
	}
	if p.dirty || p.anyGlitching() || p.detector.Active() {
		p.Draw()
		p.stats.frames.Add(1)
		p.dirty = false
	}
}

func (p *Page) anyGlitching() bool {
	for _, g := range p.glitches {
		if g.Glitching() {
			return true
		}
	}
	return false
}

// Focus returns the focused control
func (p *Page) Focus() Focus {
	return p.focus
}

// Scroll returns the document rows scrolled past
func (p *Page) Scroll() int {
	return p.scroll
}

func (p *Page) Detector() *sequence.Detector {
	return p.detector
}

func (p *Page) Score() *attention.Simulator {
	return p.score
}

func (p *Page) Cursor() *cursor.Renderer {
	return p.cursor
}

func (p *Page) Console() *console.Console {
	return p.console
}

func (p *Page) Typewriter() *manifesto.Typewriter {
	return p.typewriter
}

// FormStatus returns the contact form feedback line
func (p *Page) FormStatus() string {
	return p.form.status
}

// Metrics returns the session counters
func (p *Page) Metrics() *status.Registry {
	return p.metrics
}

// Storming reports whether the inverted storm palette is showing
func (p *Page) Storming() bool {
	return p.overlays.Active(overlay.KindStormFlash)
}

// Pending returns scheduled effect callbacks across components, zero after Unmount
func (p *Page) Pending() int {
	n := p.typewriter.Pending()
	for _, g := range p.glitches {
		n += g.Pending()
	}
	return n
}

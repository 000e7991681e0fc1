package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/attention-era/audio"
	"github.com/lixenwraith/attention-era/config"
	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/contact"
	"github.com/lixenwraith/attention-era/content"
	"github.com/lixenwraith/attention-era/core"
	"github.com/lixenwraith/attention-era/engine"
	"github.com/lixenwraith/attention-era/logging"
	"github.com/lixenwraith/attention-era/motion"
	"github.com/lixenwraith/attention-era/page"
	"github.com/lixenwraith/attention-era/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runPage opens the terminal, mounts the page and drives it until Esc or ctx ends
func runPage(ctx context.Context, opts *options, flags runFlags) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if flags.mute {
		cfg.Audio.Muted = true
	}
	if flags.noAudio {
		cfg.Audio.Disabled = true
	}

	logger, err := logging.New(cfg.Log.Debug, cfg.Log.Path)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	doc := content.Default()
	if cfg.Content.File != "" {
		if doc, err = content.Load(cfg.Content.File); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	metrics := status.NewRegistry()
	if flags.withServer {
		router := contact.NewRouter(contact.Options{Logger: logger, Metrics: metrics})
		srv := contact.NewServer(cfg.Contact.Addr, router, logger)
		g.Go(func() error { return srv.Run(gctx) })
	}
	var submitter page.Submitter
	if url := effectiveURL(cfg, flags.withServer); url != "" {
		submitter = contact.NewClient(url)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.SetStyle(tcell.StyleDefault)
	core.SetCrashScreen(screen)
	defer func() {
		core.SetCrashScreen(nil)
		screen.Fini()
	}()

	loop := engine.NewLoop(engine.DefaultLoopCapacity)
	loop.SetCrashHandler(core.HandleCrash)
	clock := engine.NewLoopClock(loop)

	tracker, err := motion.NewTracker(cfg.MotionSource(logger), loop, logger)
	if err != nil {
		return err
	}

	var player page.Audio
	if !cfg.Audio.Disabled {
		backend := audio.NewSpeakerBackend(cfg.Policy())
		player = audio.NewController(backend, audio.Load(cfg.Audio.File, backend.SampleRate(), logger), audio.Options{
			Volume:             cfg.Audio.Volume,
			MaxGestureAttempts: cfg.Audio.MaxGestureAttempts,
			StartMuted:         cfg.Audio.Muted,
			Logger:             logger,
		})
	}

	p, err := page.New(page.Options{
		Screen:        screen,
		Clock:         clock,
		Poster:        loop,
		Motion:        tracker,
		Audio:         player,
		Content:       doc,
		Contact:       submitter,
		Logger:        logger,
		Metrics:       metrics,
		Intensity:     cfg.Intensity(),
		StormDuration: cfg.Effects.StormDuration,
		TrailLength:   cfg.Effects.TrailLength,
		CompactWidth:  cfg.Effects.CompactWidth,
	})
	if err != nil {
		return err
	}

	g.Go(func() error { return loop.Run(gctx) })

	mounted := make(chan error, 1)
	loop.Post(func() { mounted <- p.Mount() })
	select {
	case err := <-mounted:
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
	case <-gctx.Done():
		return g.Wait()
	}

	// PollEvent returns nil once the screen is finalized, so the reader lives outside the group
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if !loop.Post(func() {
				if p.HandleEvent(ev) {
					cancel()
				}
			}) {
				return
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(constants.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				loop.Post(p.Frame)
			}
		}
	})

	err = g.Wait()

	// The loop has stopped, teardown runs here
	p.Unmount()
	tracker.Close()
	logger.Info("attention-era exiting", append(metricFields(metrics), zap.Error(err))...)
	return err
}

// effectiveURL reports where the page submits the contact form
func effectiveURL(cfg *config.Config, withServer bool) string {
	if withServer {
		return localURL(cfg.Contact.Addr)
	}
	return cfg.Contact.URL
}

// metricFields turns the session counters into log fields
func metricFields(r *status.Registry) []zap.Field {
	snap := r.Snapshot()
	fields := make([]zap.Field, 0, len(snap))
	for _, m := range snap {
		fields = append(fields, zap.String(m.Key, m.Value))
	}
	return fields
}

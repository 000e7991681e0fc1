// Package motion tracks the reduced-motion accessibility preference.
//
// The system preference comes from a Source (environment or a watched preference
// file); an explicit Toggle or Set overrides it for the rest of the process.
package motion

import (
	"fmt"

	"github.com/lixenwraith/attention-era/engine"
	"go.uber.org/zap"
)

// Preference is the read side every animated effect consults before scheduling work
type Preference interface {
	Enabled() bool
	Subscribe(fn func(reduced bool)) (cancel func())
}

type subscriber struct {
	id int
	fn func(bool)
}

// Tracker holds the current reduced-motion flag
// Owned by the loop goroutine; source changes are posted through the Poster
type Tracker struct {
	source     Source
	poster     engine.Poster
	logger     *zap.Logger
	enabled    bool
	overridden bool // explicit choice made, system changes are ignored

	subs   []subscriber
	nextID int
	stop   func()
}

// NewTracker initializes the flag from the source and subscribes to its changes
func NewTracker(source Source, poster engine.Poster, logger *zap.Logger) (*Tracker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Tracker{
		source:  source,
		poster:  poster,
		logger:  logger,
		enabled: source.Matches(),
	}

	stop, err := source.Watch(func(reduced bool) {
		poster.Post(func() { t.systemChanged(reduced) })
	})
	if err != nil {
		return nil, fmt.Errorf("watch reduced motion preference: %w", err)
	}
	t.stop = stop

	logger.Debug("reduced motion initialized", zap.Bool("enabled", t.enabled), zap.String("source", source.Name()))
	return t, nil
}

// Enabled reports whether animation should be suppressed
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Toggle flips the flag regardless of the system preference
func (t *Tracker) Toggle() {
	t.Set(!t.enabled)
	t.logger.Info("reduced motion toggled", zap.Bool("enabled", t.enabled))
}

// Set records an explicit choice; it wins over the system preference from now on
func (t *Tracker) Set(reduced bool) {
	t.overridden = true
	t.apply(reduced)
}

// Overridden reports whether an explicit choice masks the system preference
func (t *Tracker) Overridden() bool {
	return t.overridden
}

func (t *Tracker) apply(reduced bool) {
	if t.enabled == reduced {
		return
	}
	t.enabled = reduced

	// Snapshot: a subscriber may cancel itself while being notified
	subs := append([]subscriber(nil), t.subs...)
	for _, s := range subs {
		s.fn(reduced)
	}
}

func (t *Tracker) systemChanged(reduced bool) {
	t.logger.Debug("system reduced motion changed", zap.Bool("enabled", reduced), zap.Bool("overridden", t.overridden))
	if t.overridden {
		return
	}
	t.apply(reduced)
}

// Subscribe registers fn for flag changes, called synchronously in registration order
func (t *Tracker) Subscribe(fn func(reduced bool)) func() {
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber{id: id, fn: fn})

	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Close stops watching the system preference
func (t *Tracker) Close() {
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
	t.subs = nil
}

// Package cursor renders the custom pointer indicator and its trailing echoes.
package cursor

import (
	"fmt"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/motion"
	"github.com/lixenwraith/attention-era/overlay"
)

// TrailPoint is one echo: a history entry with its index-derived fade
type TrailPoint struct {
	Point
	Index     int
	Intensity float64
}

// Options configures a Renderer, zero values take the defaults
type Options struct {
	TrailLength  int
	CompactWidth int
}

// Renderer tracks the pointer and decides whether the custom cursor is shown
// Active requires: mounted, viewport wider than the compact threshold, reduced motion off
// Owned by the loop goroutine
type Renderer struct {
	overlays *overlay.Manager
	pref     motion.Preference
	handle   *overlay.Handle
	unsub    func()

	trailLength  int
	compactWidth int

	pos      Point
	history  []Point
	seen     bool
	hovering bool
	clicking bool
	width    int
	active   bool
}

// New creates an unmounted renderer
func New(overlays *overlay.Manager, pref motion.Preference, opts Options) *Renderer {
	if opts.TrailLength <= 0 {
		opts.TrailLength = constants.CursorTrailLength
	}
	if opts.CompactWidth <= 0 {
		opts.CompactWidth = constants.CursorCompactWidth
	}
	return &Renderer{
		overlays:     overlays,
		pref:         pref,
		trailLength:  opts.TrailLength,
		compactWidth: opts.CompactWidth,
		history:      make([]Point, 0, opts.TrailLength+1),
	}
}

// Mount takes the pointer overlay; a second mounted renderer fails with overlay.ErrAlreadyMounted
func (r *Renderer) Mount(width int) error {
	if r.handle != nil {
		return fmt.Errorf("mount cursor: %w", overlay.ErrAlreadyMounted)
	}
	h, err := r.overlays.Acquire(overlay.KindPointer)
	if err != nil {
		return fmt.Errorf("mount cursor: %w", err)
	}
	r.handle = h
	r.width = width
	r.unsub = r.pref.Subscribe(func(bool) { r.sync() })
	r.sync()
	return nil
}

// Unmount restores the native pointer and drops subscriptions
func (r *Renderer) Unmount() {
	if r.handle == nil {
		return
	}
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
	r.handle.Release()
	r.handle = nil
	r.active = false
}

// Resize applies a new viewport width
func (r *Renderer) Resize(width int) {
	r.width = width
	r.sync()
}

// sync recomputes whether the custom cursor renders and drives the suppression overlay
func (r *Renderer) sync() {
	active := r.handle != nil && r.width > r.compactWidth && !r.pref.Enabled()
	r.active = active
	if r.handle != nil {
		r.handle.Set(active && r.seen)
	}
}

// Move records a pointer-move event and the element under it
func (r *Renderer) Move(p Point, target *Node) {
	r.pos = p
	if !r.seen {
		r.seen = true
		r.sync()
	}

	// Newest first, truncated to the trail length
	r.history = append(r.history, Point{})
	copy(r.history[1:], r.history)
	r.history[0] = p
	if len(r.history) > r.trailLength {
		r.history = r.history[:r.trailLength]
	}

	r.hovering = InteractiveAncestor(target) != nil
	if r.handle != nil {
		r.handle.Place(p.X, p.Y)
	}
}

// Press and Release track the held mouse button
func (r *Renderer) Press()   { r.clicking = true }
func (r *Renderer) Release() { r.clicking = false }

// Active reports whether the custom cursor should be drawn
func (r *Renderer) Active() bool {
	return r.active
}

// Visible reports whether the cursor is active and the pointer has been seen
func (r *Renderer) Visible() bool {
	return r.active && r.seen
}

// Position returns the latest pointer position
func (r *Renderer) Position() Point {
	return r.pos
}

// Hovering reports whether the pointer is over an interactive element
func (r *Renderer) Hovering() bool {
	return r.hovering
}

// Clicking reports whether a mouse button is held
func (r *Renderer) Clicking() bool {
	return r.clicking
}

// HistoryLen returns the number of stored positions
func (r *Renderer) HistoryLen() int {
	return len(r.history)
}

// Trail returns the echoes behind the cursor, oldest last, fading with index
// Index 0 is the cursor itself and is not part of the trail
func (r *Renderer) Trail() []TrailPoint {
	if len(r.history) < 2 {
		return nil
	}
	out := make([]TrailPoint, 0, len(r.history)-1)
	for i := 1; i < len(r.history); i++ {
		out = append(out, TrailPoint{
			Point:     r.history[i],
			Index:     i,
			Intensity: 1.0 - float64(i)/float64(r.trailLength+1),
		})
	}
	return out
}

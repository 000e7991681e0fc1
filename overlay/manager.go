// Package overlay owns the document-level visual side effects of the page.
//
// Each overlay kind is a single global resource: one holder at a time, acquired on
// mount and released on teardown. Releasing restores the surface to its prior state.
package overlay

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyMounted is returned when an overlay kind is already held
var ErrAlreadyMounted = errors.New("overlay already mounted")

// Kind identifies an overlay resource
type Kind uint8

const (
	// KindPointer suppresses the terminal's native cursor while the custom one renders
	KindPointer Kind = iota
	// KindStormFlash inverts the page palette during a glitch storm
	KindStormFlash
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindStormFlash:
		return "storm-flash"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Surface is the native pointer control of the terminal screen
// tcell.Screen satisfies it
type Surface interface {
	HideCursor()
	ShowCursor(x, y int)
}

// Manager is the single owner of overlay state for one screen
type Manager struct {
	mu      sync.Mutex
	surface Surface
	held    [kindCount]*Handle
	active  [kindCount]bool

	pointerX, pointerY int
}

// NewManager creates a manager drawing on surface
func NewManager(surface Surface) *Manager {
	return &Manager{surface: surface, pointerX: -1, pointerY: -1}
}

// Handle is the exclusive right to drive one overlay kind
type Handle struct {
	m        *Manager
	kind     Kind
	released bool
}

// Acquire takes ownership of an overlay kind
func (m *Manager) Acquire(kind Kind) (*Handle, error) {
	if kind >= kindCount {
		return nil, fmt.Errorf("acquire %s: unknown overlay", kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held[kind] != nil {
		return nil, fmt.Errorf("acquire %s: %w", kind, ErrAlreadyMounted)
	}
	h := &Handle{m: m, kind: kind}
	m.held[kind] = h
	return h, nil
}

// Set switches the overlay on or off
func (h *Handle) Set(on bool) {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.released || m.active[h.kind] == on {
		return
	}
	m.active[h.kind] = on
	if h.kind == KindPointer {
		m.applyPointer()
	}
}

// Place records the real pointer position so the native cursor can follow it
func (h *Handle) Place(x, y int) {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.released || h.kind != KindPointer {
		return
	}
	m.pointerX, m.pointerY = x, y
	if !m.active[KindPointer] {
		m.applyPointer()
	}
}

// Release turns the overlay off and frees the kind for another holder
func (h *Handle) Release() {
	m := h.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.released {
		return
	}
	h.released = true
	m.held[h.kind] = nil
	if m.active[h.kind] {
		m.active[h.kind] = false
		if h.kind == KindPointer {
			m.applyPointer()
		}
	}
}

// Active reports whether an overlay kind is currently on
func (m *Manager) Active(kind Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return kind < kindCount && m.active[kind]
}

// Held reports whether an overlay kind has an owner
func (m *Manager) Held(kind Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return kind < kindCount && m.held[kind] != nil
}

// applyPointer syncs the native cursor with the suppression state, caller holds mu
func (m *Manager) applyPointer() {
	if m.surface == nil {
		return
	}
	if m.active[KindPointer] || m.pointerX < 0 || m.pointerY < 0 {
		m.surface.HideCursor()
		return
	}
	m.surface.ShowCursor(m.pointerX, m.pointerY)
}

package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	hidden bool
	x, y   int
	calls  int
}

func (f *fakeSurface) HideCursor() {
	f.hidden = true
	f.calls++
}

func (f *fakeSurface) ShowCursor(x, y int) {
	f.hidden = false
	f.x, f.y = x, y
	f.calls++
}

func TestAcquireIsExclusive(t *testing.T) {
	m := NewManager(&fakeSurface{})

	h, err := m.Acquire(KindPointer)
	require.NoError(t, err)
	assert.True(t, m.Held(KindPointer))

	_, err = m.Acquire(KindPointer)
	assert.ErrorIs(t, err, ErrAlreadyMounted)

	// Other kinds are independent
	flash, err := m.Acquire(KindStormFlash)
	require.NoError(t, err)
	flash.Release()

	h.Release()
	assert.False(t, m.Held(KindPointer))

	again, err := m.Acquire(KindPointer)
	require.NoError(t, err)
	again.Release()
}

func TestPointerSuppressionRestoresOnRelease(t *testing.T) {
	surface := &fakeSurface{}
	m := NewManager(surface)

	h, err := m.Acquire(KindPointer)
	require.NoError(t, err)

	h.Place(10, 4)
	assert.False(t, surface.hidden, "native cursor follows the pointer while not suppressed")
	assert.Equal(t, 10, surface.x)

	h.Set(true)
	assert.True(t, surface.hidden)
	h.Place(12, 5)
	assert.True(t, surface.hidden, "suppressed cursor stays hidden while moving")

	h.Release()
	assert.False(t, surface.hidden, "release restores the native cursor")
	assert.Equal(t, 12, surface.x)
	assert.Equal(t, 5, surface.y)
}

func TestStaleHandleIsInert(t *testing.T) {
	m := NewManager(&fakeSurface{})

	old, err := m.Acquire(KindStormFlash)
	require.NoError(t, err)
	old.Release()

	fresh, err := m.Acquire(KindStormFlash)
	require.NoError(t, err)
	fresh.Set(true)

	old.Set(false)
	old.Release()
	assert.True(t, m.Active(KindStormFlash), "a released handle cannot touch the new owner's state")
	assert.True(t, m.Held(KindStormFlash))
}

func TestNilSurface(t *testing.T) {
	m := NewManager(nil)
	h, err := m.Acquire(KindPointer)
	require.NoError(t, err)
	h.Set(true)
	h.Place(1, 1)
	h.Release()
}

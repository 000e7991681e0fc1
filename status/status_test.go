package status

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCachesPointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	a := m.Get("x")
	a.Add(2)
	assert.Same(t, a, m.Get("x"))
	assert.Equal(t, int64(2), m.Get("x").Load())

	_, ok := m.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Count())
}

func TestConcurrentWriters(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Ints.Get(Gestures).Add(1)
				r.Floats.Get(Score).Add(0.5)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), r.Ints.Get(Gestures).Load())
	assert.InDelta(t, 4000.0, r.Floats.Get(Score).Get(), 1e-9)
}

func TestSnapshotOrder(t *testing.T) {
	r := NewRegistry()
	r.Bools.Get(StormActive).Store(true)
	r.Floats.Get(Score).Set(1234.5)
	r.Ints.Get(Storms).Add(3)
	r.Ints.Get(Frames).Add(10)

	snap := r.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, []Metric{
		{Frames, "10"},
		{Storms, "3"},
		{Score, "1234.50"},
		{StormActive, "true"},
	}, snap)

	assert.Equal(t, "  page.frames     10\n"+
		"  storm.triggered 3\n"+
		"  attention.score 1234.50\n"+
		"  storm.active    true", r.Format())
}

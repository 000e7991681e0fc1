// Package status collects session counters shared by the page, the console and the contact endpoint.
package status

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// Well-known metric keys
const (
	Gestures       = "page.gestures"
	Frames         = "page.frames"
	Storms         = "storm.triggered"
	StormActive    = "storm.active"
	Score          = "attention.score"
	ReducedMotion  = "motion.reduced"
	AudioPlaying   = "audio.playing"
	FormsSent      = "form.sent"
	FormsFailed    = "form.failed"
	ContactOK      = "contact.accepted"
	ContactInvalid = "contact.rejected"
	ContactErrors  = "contact.errors"
)

// Registry is the metrics facade
// Writers cache pointers at construction and update the atomics directly
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// TotalCount returns the number of metrics across all kinds
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count()
}

// Metric is one formatted reading
type Metric struct {
	Key   string
	Value string
}

// Snapshot reads every metric, grouped by kind then sorted by key
func (r *Registry) Snapshot() []Metric {
	out := make([]Metric, 0, r.TotalCount())
	r.Ints.Range(func(key string, v *atomic.Int64) {
		out = append(out, Metric{key, strconv.FormatInt(v.Load(), 10)})
	})
	r.Floats.Range(func(key string, v *AtomicFloat) {
		out = append(out, Metric{key, strconv.FormatFloat(v.Get(), 'f', 2, 64)})
	})
	r.Bools.Range(func(key string, v *atomic.Bool) {
		out = append(out, Metric{key, strconv.FormatBool(v.Load())})
	})
	return out
}

// Format renders the snapshot as aligned "key value" lines
func (r *Registry) Format() string {
	snap := r.Snapshot()
	width := 0
	for _, m := range snap {
		width = max(width, len(m.Key))
	}
	s := ""
	for i, m := range snap {
		if i > 0 {
			s += "\n"
		}
		s += fmt.Sprintf("  %-*s %s", width, m.Key, m.Value)
	}
	return s
}

// Package dataset is the in-memory, thread-safe store that tracing workers
// append their samples to.
package dataset

import (
	"sort"
	"sync"

	"github.com/signalsfoundry/ionotracer/model"
)

// Event is delivered to subscribers for every appended sample.
type Event struct {
	Sample model.Sample
}

// Dataset accumulates samples and counts finished tracings. Samples and the
// tracing counter are guarded by separate locks so that progress reporting
// does not contend with sample appends.
type Dataset struct {
	samplesMu sync.RWMutex
	samples   []model.Sample

	tracingsMu sync.Mutex
	tracings   int

	subsMu sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

// New constructs an empty dataset.
func New() *Dataset {
	return &Dataset{subs: make(map[int]func(Event))}
}

// AddSample appends s. Concurrent appends never lose samples.
func (d *Dataset) AddSample(s model.Sample) {
	d.samplesMu.Lock()
	d.samples = append(d.samples, s)
	d.samplesMu.Unlock()

	d.subsMu.RLock()
	subs := make([]func(Event), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.subsMu.RUnlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, fn := range subs {
		fn(Event{Sample: s})
	}
}

// IncrementTracings records one finished ray and returns the new total.
func (d *Dataset) IncrementTracings() int {
	d.tracingsMu.Lock()
	defer d.tracingsMu.Unlock()
	d.tracings++
	return d.tracings
}

// Tracings returns the number of finished rays.
func (d *Dataset) Tracings() int {
	d.tracingsMu.Lock()
	defer d.tracingsMu.Unlock()
	return d.tracings
}

// Len returns the number of stored samples.
func (d *Dataset) Len() int {
	d.samplesMu.RLock()
	defer d.samplesMu.RUnlock()
	return len(d.samples)
}

// Samples returns a snapshot in insertion order. Insertion order interleaves
// rays arbitrarily; use Sorted for a reproducible order.
func (d *Dataset) Samples() []model.Sample {
	d.samplesMu.RLock()
	defer d.samplesMu.RUnlock()
	out := make([]model.Sample, len(d.samples))
	copy(out, d.samples)
	return out
}

// Sorted returns a snapshot ordered by ray number, then step.
func (d *Dataset) Sorted() []model.Sample {
	out := d.Samples()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RayNumber != out[j].RayNumber {
			return out[i].RayNumber < out[j].RayNumber
		}
		return out[i].Step < out[j].Step
	})
	return out
}

// Terminals returns the terminal sample of each finished ray, ordered by ray
// number.
func (d *Dataset) Terminals() []model.Sample {
	var out []model.Sample
	for _, s := range d.Sorted() {
		if s.Terminal {
			out = append(out, s)
		}
	}
	return out
}

// Reset drops all samples and zeroes the tracing counter.
func (d *Dataset) Reset() {
	d.samplesMu.Lock()
	d.samples = nil
	d.samplesMu.Unlock()

	d.tracingsMu.Lock()
	d.tracings = 0
	d.tracingsMu.Unlock()
}

// Subscribe registers fn for every subsequent sample. fn runs on the
// appending worker's goroutine. It returns an unsubscribe function.
func (d *Dataset) Subscribe(fn func(Event)) (unsubscribe func()) {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn

	return func() {
		d.subsMu.Lock()
		defer d.subsMu.Unlock()
		delete(d.subs, id)
	}
}

// Package tracker defines the lazy sample-stream abstraction shared by
// every decoder, transformer and consumer in this module.
//
// A Stream is a one-pass sequence of heart-rate samples plus three
// pieces of derived metadata (start time, end time, calorie estimate)
// that only become readable once the sequence has been drained. Reads
// before that point fail with ErrNotReady so that a legitimate zero is
// never confused with "not computed yet".
package tracker

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// Sample is one heart-rate observation.
type Sample struct {
	TS float64 // seconds since the Unix epoch
	HR int     // beats per minute
}

// ErrNotReady reports a read of a derived value before the owning
// stream has been iterated to completion, or on a stream that never
// produced the value at all.
var ErrNotReady = errors.New("value not ready")

// Stream is the capability set shared by buffer-backed data and its
// decorators. Sample sequences are finite, lazy and single-pass;
// implementations must not be iterated from more than one place.
type Stream interface {
	// Samples returns the sample sequence. The sequence may be
	// consumed at most once; iterating again yields nothing.
	Samples() iter.Seq[Sample]

	// StartTime and EndTime report the minimum and maximum timestamp
	// observed during a completed pass. They fail with ErrNotReady
	// before that.
	StartTime() (float64, error)
	EndTime() (float64, error)

	// Calories reports the calorie estimate, failing with ErrNotReady
	// while it is unknown. Zero is a real estimate, not "unknown".
	Calories() (int, error)
	SetCalories(int)
}

// CaloriesOr resolves an unknown calorie estimate to def.
func CaloriesOr(s Stream, def int) int {
	if c, err := s.Calories(); err == nil {
		return c
	}
	return def
}

// State describes where a Data stream is in its single allowed pass.
type State int

const (
	StateNew       State = iota // Samples has not been iterated yet.
	StateDraining               // Mid-pass.
	StateExhausted              // Drained or abandoned; yields nothing.
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateDraining:
		return "draining"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// deferred is a value that starts unavailable and is set at most once
// per pass. It exists so a ready zero is distinguishable from unset.
type deferred[T any] struct {
	val   T
	ready bool
}

func (d *deferred[T]) set(v T) {
	d.val = v
	d.ready = true
}

func (d *deferred[T]) get(name string) (T, error) {
	if !d.ready {
		var zero T
		return zero, fmt.Errorf("%s: %w", name, ErrNotReady)
	}
	return d.val, nil
}

func (d *deferred[T]) reset() {
	var zero T
	d.val = zero
	d.ready = false
}

// Data is the buffer-backed Stream: it wraps either a pending sample
// generator or a concrete buffer, and records start/end while the
// single pass runs. Start and end become readable only after the pass
// completes; abandoning the pass leaves them unavailable and the
// stream exhausted.
type Data struct {
	src   iter.Seq[Sample]
	state State

	start deferred[float64]
	end   deferred[float64]
	cals  deferred[int]
}

// New wraps a pending sample generator.
func New(src iter.Seq[Sample]) *Data {
	return &Data{src: src}
}

// FromSamples wraps an already-known buffer of samples. The result is
// still single-pass and still defers start/end until drained.
func FromSamples(buf []Sample) *Data {
	return New(slices.Values(buf))
}

// SetSamples replaces the pending generator and re-arms the stream for
// a fresh pass. Derived times reset to unavailable; the calorie
// estimate is independent of the pass and survives.
func (d *Data) SetSamples(src iter.Seq[Sample]) {
	d.src = src
	d.state = StateNew
	d.start.reset()
	d.end.reset()
}

// State reports the pass state.
func (d *Data) State() State { return d.state }

// Samples returns the one-pass sample sequence. The returned sequence
// records the minimum and maximum timestamp seen; on a completed pass
// over a non-empty sequence they become the stream's start and end
// times. An exhausted stream yields nothing.
func (d *Data) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if d.state == StateExhausted || d.src == nil {
			return
		}
		d.state = StateDraining
		src := d.src
		d.src = nil

		var lo, hi float64
		seen := false
		completed := true
		for s := range src {
			if !seen {
				lo, hi = s.TS, s.TS
				seen = true
			}
			if s.TS < lo {
				lo = s.TS
			}
			if s.TS > hi {
				hi = s.TS
			}
			if !yield(s) {
				completed = false
				break
			}
		}
		d.state = StateExhausted
		if completed && seen {
			d.start.set(lo)
			d.end.set(hi)
		}
	}
}

func (d *Data) StartTime() (float64, error) { return d.start.get("start_time") }

func (d *Data) EndTime() (float64, error) { return d.end.get("end_time") }

func (d *Data) Calories() (int, error) { return d.cals.get("calories") }

func (d *Data) SetCalories(c int) { d.cals.set(c) }

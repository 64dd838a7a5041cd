// Package sgtlog re-encodes a tracker stream as a pnn-sgt log file.
//
// The encoder is a consumer, not a transformer: iterating it yields
// encoded log lines rather than a tracker stream, and once the wrapped
// stream is fully drained it exposes the metadata needed to name and
// date the resulting file.
package sgtlog

import (
	"fmt"
	"iter"

	"github.com/avolkov/hrtracker/tracker"
)

// Encoder lazily serializes a tracker stream into log lines of the
// form `<timestamp_ms>;;Heart rate;<hr>\n`. Start time, elapsed time,
// calories and the synthesized filename become readable only after a
// complete pass over a non-empty stream; before that each read fails
// with tracker.ErrNotReady.
type Encoder struct {
	src tracker.Stream

	start    float64
	elapsed  float64
	cals     int
	filename string
	ready    bool
}

// NewEncoder wraps src.
func NewEncoder(src tracker.Stream) *Encoder {
	return &Encoder{src: src}
}

// Reset re-arms the encoder around a new source stream. All derived
// fields return to unavailable.
func (e *Encoder) Reset(src tracker.Stream) {
	e.src = src
	e.start = 0
	e.elapsed = 0
	e.cals = 0
	e.filename = ""
	e.ready = false
}

// Lines yields one encoded line per sample. Timestamps are emitted in
// whole milliseconds, so sub-millisecond precision is truncated; the
// round-trip through the decoder is lossy at that boundary and nowhere
// else. Draining a stream that yields no samples leaves the derived
// fields unavailable.
func (e *Encoder) Lines() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		if e.src == nil {
			return
		}
		seen := false
		for s := range e.src.Samples() {
			seen = true
			line := fmt.Sprintf("%d;;Heart rate;%d\n", int64(s.TS*1000), s.HR)
			if !yield([]byte(line)) {
				return
			}
		}
		if !seen {
			return
		}
		start, err := e.src.StartTime()
		if err != nil {
			return
		}
		end, err := e.src.EndTime()
		if err != nil {
			return
		}
		e.start = start
		e.elapsed = end - start
		e.cals = tracker.CaloriesOr(e.src, 0)
		e.filename = fmt.Sprintf(
			"#date=%d#time=%d#calories=%d#type=HeartRate#spmax=0#version=4.txt",
			int64(e.start*1000), int64(e.elapsed*1000), e.cals)
		e.ready = true
	}
}

// StartTime reports the wrapped stream's start time in unix seconds.
func (e *Encoder) StartTime() (float64, error) {
	if !e.ready {
		return 0, fmt.Errorf("start_time: %w", tracker.ErrNotReady)
	}
	return e.start, nil
}

// ElapsedTime reports end minus start in seconds.
func (e *Encoder) ElapsedTime() (float64, error) {
	if !e.ready {
		return 0, fmt.Errorf("elapsed_time: %w", tracker.ErrNotReady)
	}
	return e.elapsed, nil
}

// Calories reports the calorie estimate, zero when the source had
// none.
func (e *Encoder) Calories() (int, error) {
	if !e.ready {
		return 0, fmt.Errorf("calories: %w", tracker.ErrNotReady)
	}
	return e.cals, nil
}

// Filename reports the synthesized log file name.
func (e *Encoder) Filename() (string, error) {
	if !e.ready {
		return "", fmt.Errorf("filename: %w", tracker.ErrNotReady)
	}
	return e.filename, nil
}

package tracker

import "iter"

// Transformers decorate a Stream and hand back a different view of it.
// Filter and Identity are one-to-one, Splitter is one-to-many and
// Merge is many-to-one. Field access is forwarded to the wrapped
// stream by explicit delegation; the wrappers hold no copies of start,
// end or calories.

// Default filter bounds.
const (
	DefaultHRMin = 0
	DefaultHRMax = 220
)

// DefaultSplitSeconds is the default splitter window.
const DefaultSplitSeconds = 3600.0

// Filter yields only samples whose heart rate lies within
// [hrMin, hrMax] inclusive. It does not track time itself: the wrapped
// stream records start/end across whatever is pulled through it during
// the same pass.
type Filter struct {
	src   Stream
	hrMin int
	hrMax int
}

// NewFilter wraps src with inclusive heart-rate bounds.
func NewFilter(src Stream, hrMin, hrMax int) *Filter {
	return &Filter{src: src, hrMin: hrMin, hrMax: hrMax}
}

// HRMin reports the lower bound.
func (f *Filter) HRMin() int { return f.hrMin }

// HRMax reports the upper bound.
func (f *Filter) HRMax() int { return f.hrMax }

func (f *Filter) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for s := range f.src.Samples() {
			if s.HR < f.hrMin || s.HR > f.hrMax {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func (f *Filter) StartTime() (float64, error) { return f.src.StartTime() }
func (f *Filter) EndTime() (float64, error)   { return f.src.EndTime() }
func (f *Filter) Calories() (int, error)      { return f.src.Calories() }
func (f *Filter) SetCalories(c int)           { f.src.SetCalories(c) }

// Identity passes every sample through unchanged. It exists so call
// sites can pick "filtered" or "unfiltered" behind one Stream value
// without branching afterward.
type Identity struct {
	src Stream
}

// NewIdentity wraps src with no transformation.
func NewIdentity(src Stream) *Identity {
	return &Identity{src: src}
}

func (id *Identity) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for s := range id.src.Samples() {
			if !yield(s) {
				return
			}
		}
	}
}

func (id *Identity) StartTime() (float64, error) { return id.src.StartTime() }
func (id *Identity) EndTime() (float64, error)   { return id.src.EndTime() }
func (id *Identity) Calories() (int, error)      { return id.src.Calories() }
func (id *Identity) SetCalories(c int)           { id.src.SetCalories(c) }

// Splitter cuts a stream into contiguous time-window chunks. Iterating
// Chunks yields new buffer-backed streams, not samples: a chunk closes
// when a sample's timestamp reaches the chunk start plus the window,
// and that sample opens the next chunk. Chunk calorie estimates are
// left unknown; computing them would mean buffering the whole source.
type Splitter struct {
	src     Stream
	splitAt float64
}

// NewSplitter wraps src with a window of splitAt seconds.
func NewSplitter(src Stream, splitAt float64) *Splitter {
	return &Splitter{src: src, splitAt: splitAt}
}

// SplitTime reports the window length in seconds.
func (sp *Splitter) SplitTime() float64 { return sp.splitAt }

// Chunks returns the lazy sequence of window chunks. The final
// buffered chunk is always yielded, so concatenating every chunk's
// samples reproduces the source sequence exactly.
func (sp *Splitter) Chunks() iter.Seq[*Data] {
	return func(yield func(*Data) bool) {
		var buf []Sample
		var startT float64
		started := false
		for s := range sp.src.Samples() {
			if !started {
				startT = s.TS
				started = true
			}
			if s.TS >= startT+sp.splitAt {
				if !yield(FromSamples(buf)) {
					return
				}
				startT = s.TS
				buf = nil
			}
			buf = append(buf, s)
		}
		yield(FromSamples(buf))
	}
}

// Merge concatenates the sample sequences of streams, in argument
// order, into one buffer-backed stream. No interleaving by time is
// attempted.
func Merge(streams ...Stream) *Data {
	return New(func(yield func(Sample) bool) {
		for _, src := range streams {
			for s := range src.Samples() {
				if !yield(s) {
					return
				}
			}
		}
	})
}

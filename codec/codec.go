// Package codec sniffs and decodes workout recordings into tracker
// streams. Decoders live in a small registry of (sniff, open) pairs
// tried in priority order, so an individual format can be dropped from
// a build without touching the sniff routine; the FIT decoder sits
// behind the nofit build tag for exactly that reason.
package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/avolkov/hrtracker/tracker"
)

// ErrUnrecognized reports that no registered codec matched the source.
// It is fatal to the one file and recoverable at the caller; I/O
// failures are returned as themselves, never wrapped into this.
var ErrUnrecognized = errors.New("unrecognized tracker format")

// sniffLen is how much of the source each sniffer gets to look at.
const sniffLen = 64

// Codec is one decodable format.
type Codec struct {
	// Name identifies the format in error messages and tooling.
	Name string

	// Sniff inspects up to sniffLen leading bytes of the source. The
	// prefix may be shorter for tiny files.
	Sniff func(prefix []byte) bool

	// Open produces a lazy stream over the source, positioned at the
	// start. The returned stream must not fail on malformed records;
	// it drops them and keeps whatever valid data remains. The reader
	// stays owned by the caller.
	Open func(r io.Reader, filename string) *tracker.Data
}

type registered struct {
	Codec
	prio int
}

var codecs []registered

// register adds a codec; lower prio sniffs first.
func register(c Codec, prio int) {
	codecs = append(codecs, registered{Codec: c, prio: prio})
	sort.SliceStable(codecs, func(i, j int) bool { return codecs[i].prio < codecs[j].prio })
}

// Decode sniffs r and returns a lazy tracker stream over it. The
// filename, when given, is only consulted by codecs that mine it for
// metadata. The source must be seekable: the sniff prefix is read and
// the source rewound before any codec decodes it. Decoding itself
// happens on demand as the returned stream is iterated.
func Decode(r io.ReadSeeker, filename string) (*tracker.Data, error) {
	prefix := make([]byte, sniffLen)
	n, err := io.ReadFull(r, prefix)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read sniff prefix: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind source: %w", err)
	}

	for _, c := range codecs {
		if c.Sniff(prefix[:n]) {
			return c.Open(r, filename), nil
		}
	}
	return nil, ErrUnrecognized
}

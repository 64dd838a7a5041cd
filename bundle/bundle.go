// Package bundle packages time-window splits of many recordings into
// one zip archive of pnn-sgt log files.
package bundle

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/avolkov/hrtracker/codec"
	"github.com/avolkov/hrtracker/sgtlog"
	"github.com/avolkov/hrtracker/tracker"
)

// Source is one candidate recording.
type Source struct {
	R        io.ReadSeeker
	Filename string // optional; mined for calorie metadata
}

// Options controls filtering and splitting. When HRMin or HRMax is
// set, samples pass through a range filter; otherwise the identity
// wrapper is used. A zero SplitAt falls back to the default hourly
// window.
type Options struct {
	HRMin   *int
	HRMax   *int
	SplitAt float64
}

func (o Options) wrap(d *tracker.Data) tracker.Stream {
	if o.HRMin == nil && o.HRMax == nil {
		return tracker.NewIdentity(d)
	}
	lo, hi := tracker.DefaultHRMin, tracker.DefaultHRMax
	if o.HRMin != nil {
		lo = *o.HRMin
	}
	if o.HRMax != nil {
		hi = *o.HRMax
	}
	return tracker.NewFilter(d, lo, hi)
}

// Splits decodes every recognizable source, splits each stream on the
// configured window and writes one zip entry per non-empty split,
// named by the encoder's synthesized filename and dated to the split's
// end time. Unrecognizable sources are skipped. The archive name is
// derived from a digest of the entry payloads. An error is returned
// only for I/O-level failures.
func Splits(sources []Source, opts Options) (name string, archive []byte, err error) {
	splitAt := opts.SplitAt
	if splitAt <= 0 {
		splitAt = tracker.DefaultSplitSeconds
	}

	hasher := sha1.New()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, src := range sources {
		data, err := codec.Decode(src.R, src.Filename)
		if err != nil {
			if errors.Is(err, codec.ErrUnrecognized) {
				continue
			}
			return "", nil, fmt.Errorf("decode source: %w", err)
		}
		splitter := tracker.NewSplitter(opts.wrap(data), splitAt)
		for chunk := range splitter.Chunks() {
			enc := sgtlog.NewEncoder(chunk)
			var payload bytes.Buffer
			for line := range enc.Lines() {
				payload.Write(line)
			}
			fname, err := enc.Filename()
			if err != nil {
				// Empty split; nothing to archive.
				continue
			}
			start, _ := enc.StartTime()
			elapsed, _ := enc.ElapsedTime()
			hdr := &zip.FileHeader{
				Name:     fname,
				Method:   zip.Deflate,
				Modified: time.Unix(int64(start+elapsed), 0).UTC(),
			}
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return "", nil, fmt.Errorf("create zip entry: %w", err)
			}
			if _, err := w.Write(payload.Bytes()); err != nil {
				return "", nil, fmt.Errorf("write zip entry: %w", err)
			}
			hasher.Write(payload.Bytes())
		}
	}

	if err := zw.Close(); err != nil {
		return "", nil, fmt.Errorf("finalize zip: %w", err)
	}
	return fmt.Sprintf("splits-%x.zip", hasher.Sum(nil)), buf.Bytes(), nil
}

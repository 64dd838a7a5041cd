//go:build !nofit

package codec

import (
	"bytes"
	"io"
	"math"

	"github.com/tormoder/fit"

	"github.com/avolkov/hrtracker/tracker"
)

// FIT is only needed for device captures; builds tagged nofit can limp
// along with just the plaintext log format.

func init() {
	register(Codec{Name: "fit", Sniff: sniffFIT, Open: openFIT}, 0)
}

// fitMarker sits at bytes 8..12 of every FIT header.
var fitMarker = []byte(".FIT")

func sniffFIT(prefix []byte) bool {
	return len(prefix) >= 12 && bytes.Equal(prefix[8:12], fitMarker)
}

// openFIT wraps r in a stream that decodes the activity on first pull.
// A record message yields a sample only when both its timestamp and
// heart-rate fields are valid; real captures truncate one or the other
// and those records are dropped, not errors. A session message's
// total-calories field sets the stream estimate. Structural decode
// failure degrades to the samples decoded so far rather than failing
// the stream. The library owns the FIT-epoch adjustment; pre-epoch
// timestamps surface as base time and are skipped.
func openFIT(r io.Reader, _ string) *tracker.Data {
	var d *tracker.Data
	d = tracker.New(func(yield func(tracker.Sample) bool) {
		decoded, err := fit.Decode(r)
		if err != nil {
			return
		}
		activity, err := decoded.Activity()
		if err != nil {
			return
		}
		for _, sess := range activity.Sessions {
			if sess != nil && sess.TotalCalories != math.MaxUint16 {
				d.SetCalories(int(sess.TotalCalories))
			}
		}
		for _, rec := range activity.Records {
			if rec == nil || rec.HeartRate == math.MaxUint8 {
				continue
			}
			ts := rec.Timestamp
			if ts.IsZero() || fit.IsBaseTime(ts) {
				continue
			}
			if !yield(tracker.Sample{TS: float64(ts.Unix()), HR: int(rec.HeartRate)}) {
				return
			}
		}
	})
	return d
}

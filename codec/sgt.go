package codec

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avolkov/hrtracker/tracker"
)

// The pnn-sgt log format is line oriented: four semicolon-separated
// fields per record, `timestamp_ms;;Heart rate;value`. Other record
// kinds interleave freely in real exports, so anything that doesn't
// match is skipped rather than treated as an error.

func init() {
	register(Codec{Name: "pnn-sgt", Sniff: sniffSGT, Open: openSGT}, 1)
}

var calPattern = regexp.MustCompile(`#calories=([0-9]+)#`)

// sniffSGT validates the first line of the prefix: it must be text,
// and its leading field must be an integer that reads as a plausible
// Unix timestamp once divided from milliseconds down to seconds.
func sniffSGT(prefix []byte) bool {
	line, _, _ := bytes.Cut(prefix, []byte{'\n'})
	if !utf8.Valid(line) {
		return false
	}
	first, _, _ := strings.Cut(string(line), ";")
	ms, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return false
	}
	return plausibleUnixSeconds(ms / 1000)
}

// plausibleUnixSeconds bounds the timestamp to the representable
// calendar range instead of accepting any 64-bit value.
func plausibleUnixSeconds(sec int64) bool {
	y := time.Unix(sec, 0).UTC().Year()
	return y >= 1 && y <= 9999
}

// openSGT wraps r in a stream that scans log lines on demand. A line
// yields a sample only when it has exactly 4 fields, its third field
// is literally "Heart rate" and both integer fields parse; everything
// else is skipped. After the scan completes, a #calories=<digits>#
// marker in the supplied filename sets the calorie estimate.
func openSGT(r io.Reader, filename string) *tracker.Data {
	var d *tracker.Data
	d = tracker.New(func(yield func(tracker.Sample) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			if !utf8.ValidString(line) {
				continue
			}
			fields := strings.Split(line, ";")
			if len(fields) != 4 || fields[2] != "Heart rate" {
				continue
			}
			ms, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				continue
			}
			hr, err := strconv.Atoi(fields[3])
			if err != nil {
				continue
			}
			if !yield(tracker.Sample{TS: float64(ms) / 1000, HR: hr}) {
				return
			}
		}
		if filename != "" {
			if m := calPattern.FindStringSubmatch(filename); m != nil {
				if cals, err := strconv.Atoi(m[1]); err == nil {
					d.SetCalories(cals)
				}
			}
		}
	})
	return d
}

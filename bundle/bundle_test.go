package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"
)

var entryPattern = regexp.MustCompile(
	`^#date=[0-9]+#time=[0-9]+#calories=[0-9]+#type=HeartRate#spmax=0#version=4\.txt$`)

// threeHourLog spans three hourly windows starting at base.
func threeHourLog(base int64) []byte {
	var sb strings.Builder
	for i := int64(0); i < 9; i++ {
		ts := (base + i*1500) * 1000
		fmt.Fprintf(&sb, "%d;;Heart rate;%d\n", ts, 120+i)
	}
	return []byte(sb.String())
}

func openZip(t *testing.T, archive []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	return zr
}

func TestSplitsArchivesHourlyChunks(t *testing.T) {
	const base = 1700000000
	name, archive, err := Splits([]Source{
		{R: bytes.NewReader(threeHourLog(base)), Filename: "workout.txt"},
	}, Options{})
	if err != nil {
		t.Fatalf("Splits: %v", err)
	}
	if !strings.HasPrefix(name, "splits-") || !strings.HasSuffix(name, ".zip") {
		t.Fatalf("archive name %q not digest-derived", name)
	}

	zr := openZip(t, archive)
	// 9 samples 1500s apart cover three hourly windows.
	if len(zr.File) != 3 {
		t.Fatalf("archive holds %d entries, want 3", len(zr.File))
	}

	var lines int
	for _, f := range zr.File {
		if !entryPattern.MatchString(f.Name) {
			t.Fatalf("entry name %q does not match the log filename grammar", f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		for _, ln := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
			if !strings.Contains(ln, ";;Heart rate;") {
				t.Fatalf("entry %s holds malformed line %q", f.Name, ln)
			}
			lines++
		}
	}
	if lines != 9 {
		t.Fatalf("entries hold %d lines total, want all 9 samples", lines)
	}
}

func TestSplitsSkipsUnrecognizedSources(t *testing.T) {
	name, archive, err := Splits([]Source{
		{R: bytes.NewReader([]byte{0x00, 0xff, 0x13, 0x37})},
		{R: bytes.NewReader(threeHourLog(1700000000))},
	}, Options{})
	if err != nil {
		t.Fatalf("Splits: %v", err)
	}
	if name == "" {
		t.Fatal("expected an archive name")
	}
	zr := openZip(t, archive)
	if len(zr.File) != 3 {
		t.Fatalf("archive holds %d entries, want 3 from the decodable source", len(zr.File))
	}
}

func TestSplitsAppliesRangeFilter(t *testing.T) {
	lo, hi := 123, 125
	_, archive, err := Splits([]Source{
		{R: bytes.NewReader(threeHourLog(1700000000))},
	}, Options{HRMin: &lo, HRMax: &hi})
	if err != nil {
		t.Fatalf("Splits: %v", err)
	}

	zr := openZip(t, archive)
	var payload bytes.Buffer
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry: %v", err)
		}
		if _, err := payload.ReadFrom(rc); err != nil {
			t.Fatalf("read entry: %v", err)
		}
		rc.Close()
	}
	got := strings.Count(payload.String(), ";;Heart rate;")
	if got != 3 {
		t.Fatalf("filtered archive holds %d samples, want 3 (HR 123..125)", got)
	}
}

func TestSplitsEmptyInputYieldsEmptyArchive(t *testing.T) {
	_, archive, err := Splits(nil, Options{})
	if err != nil {
		t.Fatalf("Splits: %v", err)
	}
	zr := openZip(t, archive)
	if len(zr.File) != 0 {
		t.Fatalf("archive holds %d entries, want 0", len(zr.File))
	}
}

// Package export writes a tracker stream's samples out as tabular
// data, CSV or Parquet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/avolkov/hrtracker/tracker"
)

// Row is one exported sample.
type Row struct {
	TSUTCISO string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TSUnixS  float64 `parquet:"name=ts_unix_s, type=DOUBLE"`
	HRBPM    int64   `parquet:"name=hr_bpm, type=INT64"`
}

// Rows drains s into export rows.
func Rows(s tracker.Stream) []Row {
	rows := make([]Row, 0, 4096)
	for smp := range s.Samples() {
		sec := int64(smp.TS)
		nsec := int64((smp.TS - float64(sec)) * 1e9)
		rows = append(rows, Row{
			TSUTCISO: time.Unix(sec, nsec).UTC().Format(time.RFC3339),
			TSUnixS:  smp.TS,
			HRBPM:    int64(smp.HR),
		})
	}
	return rows
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ts_utc_iso", "ts_unix_s", "hr_bpm"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.TSUTCISO,
			strconv.FormatFloat(r.TSUnixS, 'f', -1, 64),
			strconv.FormatInt(r.HRBPM, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

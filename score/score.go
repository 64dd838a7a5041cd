// Package score computes zone-weighted heart points for a drained
// tracker stream.
//
// Heart points are determined by time spent above heart-rate cutoffs
// derived from a maximum heart rate: moderate, vigorous and
// extra-vigorous zones weighted 1, 2 and 3.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/avolkov/hrtracker/tracker"
)

// Defaults mirror the common consumer-device configuration.
const (
	DefaultHRMax  = 220
	DefaultPctMod = 0.6
	DefaultPctHi  = 0.7
	DefaultPctXhi = 0.85
)

// ErrInvalidConfig reports an out-of-range scoring parameter. Bounds
// are never clamped.
var ErrInvalidConfig = errors.New("invalid heart point configuration")

// ErrNoTracker reports a missing workout stream.
var ErrNoTracker = errors.New("no tracker stream")

// Config is a validated heart-points calculator.
type Config struct {
	hrMax   int
	cutoffs [3]float64 // moderate, vigorous, extra-vigorous
}

// NewConfig validates the bounds and derives the zone cutoffs:
// hrMax must lie in (0, 220] and each fraction strictly in (0, 1).
// The fractions are semantically ascending but no ordering between
// them is enforced.
func NewConfig(hrMax int, pctMod, pctHi, pctXhi float64) (*Config, error) {
	if hrMax <= 0 || hrMax > 220 {
		return nil, fmt.Errorf("%w: hr_max %d not in (0, 220]", ErrInvalidConfig, hrMax)
	}
	pcts := [3]float64{pctMod, pctHi, pctXhi}
	names := [3]string{"pct_mod", "pct_hi", "pct_xhi"}
	cfg := &Config{hrMax: hrMax}
	for i, p := range pcts {
		if !(p > 0 && p < 1) {
			return nil, fmt.Errorf("%w: %s %v not in (0, 1)", ErrInvalidConfig, names[i], p)
		}
		cfg.cutoffs[i] = float64(hrMax) * p
	}
	return cfg, nil
}

// HRMax reports the configured maximum heart rate.
func (c *Config) HRMax() int { return c.hrMax }

// Cutoffs reports the derived zone cutoffs, moderate first.
func (c *Config) Cutoffs() [3]float64 { return c.cutoffs }

// Summary is the scored artifact for one workout.
type Summary struct {
	Start    float64 `json:"start_time"` // unix seconds
	End      float64 `json:"end_time"`   // unix seconds
	Points   int     `json:"points"`
	Calories int     `json:"calories"`
}

// HeartPoints drains w and scores each consecutive sample pair: the
// pair's elapsed minutes weighted by the highest zone its average
// heart rate reaches, zero below the moderate cutoff. The total is
// rounded once at the end. A stream with a single sample scores zero
// with start == end; a stream that never produced a sample fails
// because its times never became available. An unknown calorie
// estimate resolves to zero.
func (c *Config) HeartPoints(w tracker.Stream) (Summary, error) {
	if w == nil {
		return Summary{}, ErrNoTracker
	}

	var points float64
	var prev tracker.Sample
	seen := false
	for s := range w.Samples() {
		if seen {
			points += c.pairPoints(prev, s)
		}
		prev = s
		seen = true
	}

	start, err := w.StartTime()
	if err != nil {
		return Summary{}, fmt.Errorf("heart points: %w", err)
	}
	end, err := w.EndTime()
	if err != nil {
		return Summary{}, fmt.Errorf("heart points: %w", err)
	}
	return Summary{
		Start:    start,
		End:      end,
		Points:   int(math.Round(points)),
		Calories: tracker.CaloriesOr(w, 0),
	}, nil
}

// pairPoints checks zones from extra-vigorous downward so the highest
// qualifying weight wins.
func (c *Config) pairPoints(x0, x1 tracker.Sample) float64 {
	mins := (x1.TS - x0.TS) / 60
	avg := float64(x0.HR+x1.HR) / 2
	for z := len(c.cutoffs) - 1; z >= 0; z-- {
		if avg >= c.cutoffs[z] {
			return mins * float64(z+1)
		}
	}
	return 0
}

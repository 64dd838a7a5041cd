package score

import (
	"errors"
	"testing"

	"github.com/avolkov/hrtracker/tracker"
)

func mustConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewConfig(DefaultHRMax, DefaultPctMod, DefaultPctHi, DefaultPctXhi)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]struct {
		hrMax                 int
		pctMod, pctHi, pctXhi float64
	}{
		"hr_max zero":      {0, 0.6, 0.7, 0.85},
		"hr_max negative":  {-10, 0.6, 0.7, 0.85},
		"hr_max too large": {221, 0.6, 0.7, 0.85},
		"pct_mod zero":     {220, 0, 0.7, 0.85},
		"pct_hi one":       {220, 0.6, 1.0, 0.85},
		"pct_xhi above":    {220, 0.6, 0.7, 1.5},
		"pct_mod negative": {220, -0.1, 0.7, 0.85},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfig(tc.hrMax, tc.pctMod, tc.pctHi, tc.pctXhi)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestCutoffsDerived(t *testing.T) {
	cfg := mustConfig(t)
	want := [3]float64{132, 154, 187}
	if got := cfg.Cutoffs(); got != want {
		t.Fatalf("cutoffs = %v, want %v", got, want)
	}
}

func TestHeartPointsVigorousTenMinutes(t *testing.T) {
	// avg HR 160 over 10 minutes: at or above the vigorous cutoff
	// (154) but below extra-vigorous (187), so weight 2.
	cfg := mustConfig(t)
	w := tracker.FromSamples([]tracker.Sample{
		{TS: 0, HR: 160},
		{TS: 600, HR: 160},
	})
	sum, err := cfg.HeartPoints(w)
	if err != nil {
		t.Fatalf("HeartPoints: %v", err)
	}
	if sum.Points != 20 {
		t.Fatalf("points = %d, want 20", sum.Points)
	}
	if sum.Start != 0 || sum.End != 600 {
		t.Fatalf("start=%v end=%v, want 0 and 600", sum.Start, sum.End)
	}
}

func TestHeartPointsZoneBoundaries(t *testing.T) {
	cfg := mustConfig(t)
	cases := map[string]struct {
		hr   int
		want int
	}{
		"below moderate":      {100, 0},
		"at moderate cutoff":  {132, 10}, // weight 1
		"at extra-vigorous":   {187, 30}, // weight 3
		"just under moderate": {131, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := tracker.FromSamples([]tracker.Sample{
				{TS: 0, HR: tc.hr},
				{TS: 600, HR: tc.hr},
			})
			sum, err := cfg.HeartPoints(w)
			if err != nil {
				t.Fatalf("HeartPoints: %v", err)
			}
			if sum.Points != tc.want {
				t.Fatalf("points = %d, want %d", sum.Points, tc.want)
			}
		})
	}
}

func TestHeartPointsRoundsOnceAtEnd(t *testing.T) {
	cfg := mustConfig(t)
	// Three 10-second moderate segments: 3 * (1/6) points. Per-pair
	// rounding would give 0 or 3; a single final round gives 1.
	w := tracker.FromSamples([]tracker.Sample{
		{TS: 0, HR: 140},
		{TS: 10, HR: 140},
		{TS: 20, HR: 140},
		{TS: 30, HR: 140},
	})
	sum, err := cfg.HeartPoints(w)
	if err != nil {
		t.Fatalf("HeartPoints: %v", err)
	}
	if sum.Points != 1 {
		t.Fatalf("points = %d, want 1", sum.Points)
	}
}

func TestHeartPointsSingleSample(t *testing.T) {
	cfg := mustConfig(t)
	w := tracker.FromSamples([]tracker.Sample{{TS: 1234, HR: 180}})
	sum, err := cfg.HeartPoints(w)
	if err != nil {
		t.Fatalf("HeartPoints: %v", err)
	}
	if sum.Points != 0 {
		t.Fatalf("points = %d, want 0", sum.Points)
	}
	if sum.Start != 1234 || sum.End != 1234 {
		t.Fatalf("start=%v end=%v, want both 1234", sum.Start, sum.End)
	}
	if sum.Calories != 0 {
		t.Fatalf("calories = %d, want default 0", sum.Calories)
	}
}

func TestHeartPointsEmptyStreamFails(t *testing.T) {
	cfg := mustConfig(t)
	_, err := cfg.HeartPoints(tracker.FromSamples(nil))
	if !errors.Is(err, tracker.ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
}

func TestHeartPointsNilStream(t *testing.T) {
	cfg := mustConfig(t)
	if _, err := cfg.HeartPoints(nil); !errors.Is(err, ErrNoTracker) {
		t.Fatalf("got %v, want ErrNoTracker", err)
	}
}

func TestHeartPointsCarriesCalories(t *testing.T) {
	cfg := mustConfig(t)
	w := tracker.FromSamples([]tracker.Sample{{TS: 0, HR: 160}, {TS: 600, HR: 160}})
	w.SetCalories(412)
	sum, err := cfg.HeartPoints(w)
	if err != nil {
		t.Fatalf("HeartPoints: %v", err)
	}
	if sum.Calories != 412 {
		t.Fatalf("calories = %d, want 412", sum.Calories)
	}
}

func TestHeartPointsMonotonicInHeartRate(t *testing.T) {
	cfg := mustConfig(t)
	base := []tracker.Sample{
		{TS: 0, HR: 100},
		{TS: 300, HR: 140},
		{TS: 600, HR: 150},
		{TS: 900, HR: 120},
	}
	prev := -1
	for _, bump := range []int{0, 10, 25, 50, 70} {
		raised := make([]tracker.Sample, len(base))
		for i, s := range base {
			raised[i] = tracker.Sample{TS: s.TS, HR: s.HR + bump}
		}
		sum, err := cfg.HeartPoints(tracker.FromSamples(raised))
		if err != nil {
			t.Fatalf("HeartPoints(+%d): %v", bump, err)
		}
		if sum.Points < prev {
			t.Fatalf("points decreased to %d after raising heart rates by %d (was %d)",
				sum.Points, bump, prev)
		}
		prev = sum.Points
	}
}

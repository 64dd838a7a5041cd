// Package config loads tool defaults from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avolkov/hrtracker/score"
	"github.com/avolkov/hrtracker/tracker"
)

// Scoring holds heart-points parameters.
type Scoring struct {
	HRMax  int     `yaml:"hr_max"`
	PctMod float64 `yaml:"pct_mod"`
	PctHi  float64 `yaml:"pct_hi"`
	PctXhi float64 `yaml:"pct_xhi"`
}

// Filter holds optional heart-rate bounds. Nil means "no bound was
// requested", which selects the identity wrapper downstream.
type Filter struct {
	HRMin *int `yaml:"hr_min"`
	HRMax *int `yaml:"hr_max"`
}

// Split holds the split window.
type Split struct {
	Seconds float64 `yaml:"seconds"`
}

// Config is the full tool configuration.
type Config struct {
	Scoring Scoring `yaml:"scoring"`
	Filter  Filter  `yaml:"filter"`
	Split   Split   `yaml:"split"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Scoring: Scoring{
			HRMax:  score.DefaultHRMax,
			PctMod: score.DefaultPctMod,
			PctHi:  score.DefaultPctHi,
			PctXhi: score.DefaultPctXhi,
		},
		Split: Split{Seconds: tracker.DefaultSplitSeconds},
	}
}

// Load reads path over the defaults. Fields absent from the file keep
// their default values; validation of the scoring bounds is left to
// score.NewConfig so out-of-range values fail there, not here.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Split.Seconds <= 0 {
		cfg.Split.Seconds = tracker.DefaultSplitSeconds
	}
	return cfg, nil
}

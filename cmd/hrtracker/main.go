package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/avolkov/hrtracker/bundle"
	"github.com/avolkov/hrtracker/codec"
	"github.com/avolkov/hrtracker/config"
	"github.com/avolkov/hrtracker/export"
	"github.com/avolkov/hrtracker/score"
	"github.com/avolkov/hrtracker/tracker"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "hrtracker",
		Usage:   "Decode, score, split and export heart-rate recordings",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "points",
				Usage:     "Compute heart points for each recording",
				ArgsUsage: "file...",
				Action:    runPoints,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "hr-max", Usage: "Maximum heart rate, (0, 220]"},
					&cli.Float64Flag{Name: "pct-mod", Usage: "Moderate-zone fraction of hr-max"},
					&cli.Float64Flag{Name: "pct-hi", Usage: "Vigorous-zone fraction of hr-max"},
					&cli.Float64Flag{Name: "pct-xhi", Usage: "Extra-vigorous-zone fraction of hr-max"},
					&cli.IntFlag{Name: "hr-min", Usage: "Drop samples below this heart rate"},
				},
			},
			{
				Name:      "split",
				Usage:     "Write a zip of time-window split log files",
				ArgsUsage: "file...",
				Action:    runSplit,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "Output zip path (default: digest-derived name)"},
					&cli.Float64Flag{Name: "split-at", Usage: "Split window in seconds"},
					&cli.IntFlag{Name: "hr-min", Usage: "Drop samples below this heart rate"},
					&cli.IntFlag{Name: "hr-max", Usage: "Drop samples above this heart rate"},
				},
			},
			{
				Name:      "export",
				Usage:     "Export decoded samples as CSV or Parquet",
				ArgsUsage: "file",
				Action:    runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv|parquet"},
					&cli.StringFlag{Name: "out", Usage: "Output path (default: stdout, csv only)"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

func runPoints(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("hr-max") {
		cfg.Scoring.HRMax = c.Int("hr-max")
	}
	if c.IsSet("pct-mod") {
		cfg.Scoring.PctMod = c.Float64("pct-mod")
	}
	if c.IsSet("pct-hi") {
		cfg.Scoring.PctHi = c.Float64("pct-hi")
	}
	if c.IsSet("pct-xhi") {
		cfg.Scoring.PctXhi = c.Float64("pct-xhi")
	}
	if c.IsSet("hr-min") {
		v := c.Int("hr-min")
		cfg.Filter.HRMin = &v
	}

	pointCfg, err := score.NewConfig(
		cfg.Scoring.HRMax, cfg.Scoring.PctMod, cfg.Scoring.PctHi, cfg.Scoring.PctXhi)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	for _, path := range c.Args().Slice() {
		summary, err := scoreFile(path, cfg, pointCfg)
		if err != nil {
			if errors.Is(err, codec.ErrUnrecognized) {
				log.Printf("skipping %s: unrecognized format", path)
				continue
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		out := struct {
			File string `json:"file"`
			score.Summary
		}{File: path, Summary: summary}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func scoreFile(path string, cfg *config.Config, pointCfg *score.Config) (score.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return score.Summary{}, err
	}
	defer f.Close()

	data, err := codec.Decode(f, f.Name())
	if err != nil {
		return score.Summary{}, err
	}

	// One uniform construction: a bounded filter when requested,
	// the identity wrapper otherwise.
	var stream tracker.Stream
	if cfg.Filter.HRMin != nil {
		stream = tracker.NewFilter(data, *cfg.Filter.HRMin, cfg.Scoring.HRMax)
	} else {
		stream = tracker.NewIdentity(data)
	}
	return pointCfg.HeartPoints(stream)
}

func runSplit(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("hr-min") {
		v := c.Int("hr-min")
		cfg.Filter.HRMin = &v
	}
	if c.IsSet("hr-max") {
		v := c.Int("hr-max")
		cfg.Filter.HRMax = &v
	}
	if c.IsSet("split-at") {
		cfg.Split.Seconds = c.Float64("split-at")
	}

	var sources []bundle.Source
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, path := range c.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		closers = append(closers, f)
		sources = append(sources, bundle.Source{R: f, Filename: f.Name()})
	}

	name, archive, err := bundle.Splits(sources, bundle.Options{
		HRMin:   cfg.Filter.HRMin,
		HRMax:   cfg.Filter.HRMax,
		SplitAt: cfg.Split.Seconds,
	})
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, archive, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
	return nil
}

func runExport(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one input file is required")
	}
	format := strings.ToLower(c.String("format"))
	if format != "csv" && format != "parquet" {
		return fmt.Errorf("unsupported format %q (expected csv|parquet)", format)
	}

	path := c.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := codec.Decode(f, f.Name())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	rows := export.Rows(data)

	switch format {
	case "csv":
		if out := c.String("out"); out != "" {
			of, err := os.Create(out)
			if err != nil {
				return err
			}
			defer of.Close()
			return export.WriteCSV(of, rows)
		}
		return export.WriteCSV(c.App.Writer, rows)
	case "parquet":
		out := c.String("out")
		if out == "" {
			return fmt.Errorf("--out is required for parquet output")
		}
		blob, err := export.MarshalParquet(rows)
		if err != nil {
			return fmt.Errorf("marshal parquet: %w", err)
		}
		return os.WriteFile(out, blob, 0o644)
	}
	return nil
}

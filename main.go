package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wildstyl3r/effenergy/internal/config"
	"github.com/wildstyl3r/effenergy/internal/material"
	"github.com/wildstyl3r/effenergy/internal/model"
	"github.com/wildstyl3r/effenergy/internal/utils"
)

func main() {
	dataFlags := model.NewDataFlags(flag.CommandLine)
	var configFileName = flag.String("input", "effenergy", "analysis configuration in toml format")
	var verbose = flag.Bool("v", false, "log fit and inversion details")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("config", utils.GetFilename(*configFileName))

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	cfg, err := config.LoadConfig(*configFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outputPath := "."
	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		outputPath = filepath.Clean(cfg.OutputDir)
	}
	dataFlags.SetOutputPath(outputPath)

	failed := 0
	for _, name := range cfg.MaterialNames() {
		fmt.Println("\n" + name)
		if err := analyze(&cfg, name, dataFlags, logger.With("material", name)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed++
		}
	}

	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
	if failed > 0 {
		os.Exit(1)
	}
}

func analyze(cfg *config.Config, name string, dataFlags model.DataFlags, logger *slog.Logger) error {
	parameters, err := cfg.Unify(name)
	if err != nil {
		return err
	}

	table, err := material.LoadNISTTable(parameters.ReferenceTable)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	m, series, err := material.Load(
		parameters.Composition,
		material.DirSource{Dir: parameters.CompositionDir},
		table,
		material.Window{EMin: parameters.EnergyMin, EMax: parameters.EnergyMax},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	weight := utils.SumSlice(utils.Map(m.Composition, func(c material.ElementalContribution) float64 {
		return c.WeightFraction
	}))
	logger.Debug("material loaded", "density", m.Density, "elements", len(m.Composition),
		"weight", weight, "samples", series.Len())

	curve, err := model.Fit(series, model.FitConfig{
		Degree: parameters.Degree,
		Knots:  parameters.Knots,
		Alpha:  parameters.Alpha,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Info("curve fitted", "max_error", curve.MaxError())

	sweep, err := curve.Sweep(model.InversionGrid{
		EMin:       parameters.EnergyMin,
		EMax:       parameters.EnergyMax,
		Resolution: parameters.Resolution,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	airRows, err := parameters.AirRows()
	if err != nil {
		return fmt.Errorf("%s: air intensities: %w", name, err)
	}
	air, err := model.NewAirIntensities(airRows, parameters.PixelDepth)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	measurements := utils.Map(parameters.Measurements, func(row []float64) model.Measurement {
		return model.Measurement{KVp: row[0], Mean: row[1], Sigma: row[2]}
	})

	points, skipped := model.Analyze(sweep, m, model.Calibration{
		Thickness:  parameters.Thickness,
		PixelDepth: parameters.PixelDepth,
		Air:        air,
	}, measurements)
	for _, s := range skipped {
		logger.Warn("measurement skipped", "kVp", s.KVp, "err", s.Err)
	}

	kept := points[:0]
	for _, p := range points {
		logger.Debug("effective energy", "kVp", p.KVp, "mu_over_rho", p.MuOverRho.Value,
			"energy", p.Effective.Energy, "lower", p.Effective.Lower, "upper", p.Effective.Upper,
			"status", p.Effective.Status)
		if p.Effective.Saturated() {
			logger.Warn("effective energy saturated", "kVp", p.KVp, "status", p.Effective.Status,
				"dropped", parameters.DropSaturated)
			if parameters.DropSaturated {
				continue
			}
		}
		kept = append(kept, p)
	}
	logger.Info("measurements analysed", "accepted", len(kept), "total", len(measurements))

	saved, err := model.NewDataExtractor(name, parameters, series, sweep, kept).Save(dataFlags)
	for _, item := range saved {
		fmt.Println(item + " saved")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

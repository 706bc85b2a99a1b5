package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wildstyl3r/effenergy/internal/constants"
	"github.com/wildstyl3r/effenergy/internal/material"
)

var (
	ErrClipped      = errors.New("reading clipped")
	ErrNoAirReading = errors.New("no air intensity for kVp")
)

// Reading is a value with its one-sigma uncertainty.
type Reading struct {
	Value float64
	Sigma float64
}

// Div propagates first order uncertainties through r/o.
func (r Reading) Div(o Reading) Reading {
	q := r.Value / o.Value
	return Reading{
		Value: q,
		Sigma: math.Abs(q) * math.Hypot(r.Sigma/r.Value, o.Sigma/o.Value),
	}
}

// Measurement is a region-of-interest pixel mean and standard deviation
// behind the calibration material at a tube voltage.
type Measurement struct {
	KVp   float64
	Mean  float64
	Sigma float64
}

// AirIntensities maps tube voltage to the normalised unattenuated intensity.
type AirIntensities map[float64]Reading

// NewAirIntensities builds the air table from rows of a kVp followed by one
// or more background readings in pixel units. Several readings are combined
// into their mean and sample standard deviation.
func NewAirIntensities(rows [][]float64, pixelDepth float64) (AirIntensities, error) {
	air := make(AirIntensities, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("air intensity row %d: expected kVp and readings, got %v", i, row)
		}
		readings := row[1:]
		var r Reading
		if len(readings) == 1 {
			r.Value = readings[0]
		} else {
			r.Value, r.Sigma = stat.MeanStdDev(readings, nil)
		}
		if !(r.Value > 0) {
			return nil, fmt.Errorf("air intensity at %v kVp is not positive: %v", row[0], r.Value)
		}
		air[row[0]] = Reading{Value: r.Value / pixelDepth, Sigma: r.Sigma / pixelDepth}
	}
	return air, nil
}

// Calibration holds the per-material constants of an imaging session.
type Calibration struct {
	Thickness  float64 // [cm]
	PixelDepth float64
	Air        AirIntensities
}

// RelativeIntensity normalises a measurement by the air intensity at the same
// kVp. Readings within the clip thresholds of black or white are rejected.
func (c Calibration) RelativeIntensity(m Measurement) (Reading, error) {
	pixelDepth := c.PixelDepth
	if pixelDepth == 0 {
		pixelDepth = constants.PixelDepth
	}
	mean := m.Mean / pixelDepth
	if mean >= constants.ClipHigh || mean <= constants.ClipLow {
		return Reading{}, fmt.Errorf("%v kVp mean %v: %w", m.KVp, mean, ErrClipped)
	}
	air, some := c.Air[m.KVp]
	if !some {
		return Reading{}, fmt.Errorf("%v kVp: %w", m.KVp, ErrNoAirReading)
	}
	return Reading{Value: mean, Sigma: m.Sigma / pixelDepth}.Div(air), nil
}

// MuOverRho converts a relative intensity through thickness [cm] of a material
// of density [g/cm^3] into a mass attenuation coefficient [cm^2/g].
func MuOverRho(intensity Reading, thickness, density float64) Reading {
	mass := thickness * density
	return Reading{
		Value: math.Log(1/intensity.Value) / mass,
		Sigma: math.Abs(intensity.Sigma / (intensity.Value * mass)),
	}
}

type Point struct {
	KVp       float64
	Intensity Reading
	MuOverRho Reading
	Effective EffectiveEnergy
}

type Skipped struct {
	KVp float64
	Err error
}

// Analyze estimates the effective energy of every measurement. Rejected
// measurements are reported in skipped; saturated estimates are kept.
func Analyze(s Sweep, m material.Material, cal Calibration, measurements []Measurement) (points []Point, skipped []Skipped) {
	for _, meas := range measurements {
		intensity, err := cal.RelativeIntensity(meas)
		if err != nil {
			skipped = append(skipped, Skipped{KVp: meas.KVp, Err: err})
			continue
		}
		mu := MuOverRho(intensity, cal.Thickness, m.Density)
		points = append(points, Point{
			KVp:       meas.KVp,
			Intensity: intensity,
			MuOverRho: mu,
			Effective: s.Invert(mu.Value, mu.Sigma),
		})
	}
	return
}

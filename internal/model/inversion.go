package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wildstyl3r/effenergy/internal/constants"
	"github.com/wildstyl3r/effenergy/internal/utils"
)

var ErrInvalidGrid = errors.New("invalid inversion grid")

// InversionGrid is the dense energy sweep used to invert a curve.
type InversionGrid struct {
	EMin       float64
	EMax       float64
	Resolution int
}

func DefaultGrid() InversionGrid {
	return InversionGrid{EMin: constants.EnergyMin, EMax: constants.EnergyMax, Resolution: constants.Resolution}
}

// Samples returns Resolution evenly spaced energies from EMin to EMax
// inclusive.
func (g InversionGrid) Samples() ([]float64, error) {
	if g.Resolution < 2 || !(g.EMin > 0) || !(g.EMax > g.EMin) || math.IsInf(g.EMax, 0) {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidGrid, g)
	}
	samples := floats.Span(make([]float64, g.Resolution), g.EMin, g.EMax)
	samples[len(samples)-1] = g.EMax
	return samples, nil
}

type Status int

const (
	InRange Status = iota
	SaturatedLow
	SaturatedHigh
)

func (s Status) String() string {
	switch s {
	case InRange:
		return "in range"
	case SaturatedLow:
		return "saturated low"
	case SaturatedHigh:
		return "saturated high"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// EffectiveEnergy is an energy estimate with its uncertainty interval.
// Lower and Upper are the grid samples matched to value+sigma and
// value-sigma, ordered by energy.
type EffectiveEnergy struct {
	Energy float64
	Lower  float64
	Upper  float64
	Status Status
}

func (e EffectiveEnergy) Saturated() bool {
	return e.Status != InRange
}

// Errors returns the asymmetric error bars around Energy.
func (e EffectiveEnergy) Errors() (plus, minus float64) {
	return e.Upper - e.Energy, e.Energy - e.Lower
}

// Sweep holds a curve resampled over an inversion grid, so that many
// attenuation values can be inverted without re-evaluating the curve.
type Sweep struct {
	Energy    []float64
	MuOverRho []float64
	MaxError  float64
}

func (c *Curve) Sweep(g InversionGrid) (Sweep, error) {
	energy, err := g.Samples()
	if err != nil {
		return Sweep{}, err
	}
	mu, maxErr := c.Predict(energy)
	return Sweep{Energy: energy, MuOverRho: mu, MaxError: maxErr}, nil
}

// Invert finds the energies whose predicted attenuation is closest to value,
// value+sigma and value-sigma. Values beyond the curve clamp to the grid
// boundary and are tagged as saturated.
func (s Sweep) Invert(value, sigma float64) EffectiveEnergy {
	lo, hi := floats.Min(s.MuOverRho), floats.Max(s.MuOverRho)
	index := s.locate(value, lo, hi)
	plus := s.Energy[s.locate(value+sigma, lo, hi)]
	minus := s.Energy[s.locate(value-sigma, lo, hi)]

	e := EffectiveEnergy{
		Energy: s.Energy[index],
		Lower:  min(plus, minus),
		Upper:  max(plus, minus),
	}
	switch index {
	case 0:
		e.Status = SaturatedLow
	case len(s.Energy) - 1:
		e.Status = SaturatedHigh
	}
	return e
}

// locate returns the grid index matched to value. Values outside the range
// of the curve go to the window edge, since the curve is held constant
// beyond its training energies.
func (s Sweep) locate(value, lo, hi float64) int {
	switch {
	case value < lo:
		return len(s.Energy) - 1
	case value > hi:
		return 0
	}
	return utils.ArgClosest(s.MuOverRho, value)
}

// Invert sweeps the curve over g and inverts value with its uncertainty.
func (c *Curve) Invert(value, sigma float64, g InversionGrid) (EffectiveEnergy, error) {
	s, err := c.Sweep(g)
	if err != nil {
		return EffectiveEnergy{}, err
	}
	return s.Invert(value, sigma), nil
}

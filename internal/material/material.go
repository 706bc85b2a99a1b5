// Package material loads calibration material compositions and assembles
// their mass attenuation coefficients from tabulated elemental reference data.
package material

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Material is a calibration absorber. Density is in g/cm^3.
type Material struct {
	Name        string
	Density     float64
	Composition []ElementalContribution
}

type ElementalContribution struct {
	AtomicNumber   int
	WeightFraction float64 // fractions are not required to sum to 1
}

// Series holds mass attenuation coefficients [cm^2/g] sampled at photon
// energies in the reference table's energy unit.
type Series struct {
	Energy    []float64
	MuOverRho []float64
}

func (s Series) Len() int {
	return len(s.Energy)
}

// Window is the closed photon energy range kept from the reference data.
type Window struct {
	EMin float64
	EMax float64
}

func (w Window) Contains(e float64) bool {
	return w.EMin <= e && e <= w.EMax
}

// Truncate returns the samples of energy and values that fall inside w.
func (w Window) Truncate(energy, values []float64) (e, v []float64) {
	for i := range energy {
		if w.Contains(energy[i]) {
			e = append(e, energy[i])
			v = append(v, values[i])
		}
	}
	return
}

// Assemble combines the reference series of every element of m, truncated to
// w and weighted by mass fraction. Elements must share the same truncated
// energy grid; the grid of the last element is reported.
func Assemble(m Material, ref ReferenceSource, w Window) (Series, error) {
	if len(m.Composition) == 0 {
		return Series{}, fmt.Errorf("material %q has no elements: %w", m.Name, ErrDataNotFound)
	}

	var combined Series
	for i, element := range m.Composition {
		energy, mu, err := ref.Series(element.AtomicNumber)
		if err != nil {
			return Series{}, fmt.Errorf("material %q, Z=%d: %w", m.Name, element.AtomicNumber, err)
		}
		if len(energy) != len(mu) {
			return Series{}, fmt.Errorf("material %q, Z=%d: %d energies for %d coefficients: %w",
				m.Name, element.AtomicNumber, len(energy), len(mu), ErrMalformedData)
		}

		energy, mu = w.Truncate(energy, mu)
		scaled := make([]float64, len(mu))
		vecmath.ScaleBlock(scaled, mu, element.WeightFraction)

		if i == 0 {
			combined.MuOverRho = scaled
		} else {
			if len(scaled) != len(combined.MuOverRho) {
				return Series{}, fmt.Errorf("material %q, Z=%d: %d samples in window, expected %d: %w",
					m.Name, element.AtomicNumber, len(scaled), len(combined.MuOverRho), ErrMalformedData)
			}
			vecmath.AddBlockInPlace(combined.MuOverRho, scaled)
		}
		combined.Energy = energy
	}
	return combined, nil
}

// Load reads the composition of name and assembles its attenuation series.
func Load(name string, comp CompositionSource, ref ReferenceSource, w Window) (Material, Series, error) {
	m, err := comp.Composition(name)
	if err != nil {
		return Material{}, Series{}, err
	}
	series, err := Assemble(m, ref, w)
	if err != nil {
		return Material{}, Series{}, err
	}
	return m, series, nil
}

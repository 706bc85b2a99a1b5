package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildstyl3r/effenergy/internal/material"
)

func TestGridSamples(t *testing.T) {
	samples, err := DefaultGrid().Samples()
	require.NoError(t, err)
	require.Len(t, samples, 10000)
	assert.Equal(t, 8e-3, samples[0])
	assert.Equal(t, 1e-1, samples[len(samples)-1])
	for i := 1; i < len(samples); i++ {
		require.Greater(t, samples[i], samples[i-1])
	}

	for _, g := range []InversionGrid{
		{EMin: 8e-3, EMax: 1e-1, Resolution: 1},
		{EMin: 1e-1, EMax: 8e-3, Resolution: 100},
		{EMin: 0, EMax: 1e-1, Resolution: 100},
	} {
		_, err := g.Samples()
		assert.ErrorIs(t, err, ErrInvalidGrid, "%+v", g)
	}
}

func TestRoundTrip(t *testing.T) {
	curve := fitAluminium(t)
	sweep, err := curve.Sweep(DefaultGrid())
	require.NoError(t, err)
	assert.Equal(t, curve.MaxError(), sweep.MaxError)

	for _, value := range []float64{40, 10, 2, 0.5, 0.2} {
		e := sweep.Invert(value, 0)
		assert.Equal(t, InRange, e.Status, "value %v", value)
		assert.LessOrEqual(t, math.Abs(curve.Eval(e.Energy)-value), curve.MaxError(), "value %v", value)
	}
}

func TestInvertBoundary(t *testing.T) {
	curve := fitAluminium(t)
	grid := DefaultGrid()

	below, err := curve.Invert(1e-6, 0, grid)
	require.NoError(t, err)
	assert.Equal(t, grid.EMax, below.Energy)
	assert.Equal(t, SaturatedHigh, below.Status)
	assert.True(t, below.Saturated())

	above, err := curve.Invert(1e6, 0, grid)
	require.NoError(t, err)
	assert.Equal(t, grid.EMin, above.Energy)
	assert.Equal(t, SaturatedLow, above.Status)
	assert.Equal(t, "saturated low", above.Status.String())

	_, err = curve.Invert(1, 0, InversionGrid{EMin: 8e-3, EMax: 1e-1})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestInvertBoundaryNarrowTraining(t *testing.T) {
	ref := material.Table{13: {Energy: []float64{0.01, 0.05}, MuOverRho: []float64{5.0, 0.2}}}
	al := material.Material{Name: "Al", Density: 2.699, Composition: []material.ElementalContribution{{AtomicNumber: 13, WeightFraction: 1.0}}}
	series, err := material.Assemble(al, ref, window)
	require.NoError(t, err)
	curve, err := Fit(series, DefaultFitConfig())
	require.NoError(t, err)
	grid := DefaultGrid()
	sweep, err := curve.Sweep(grid)
	require.NoError(t, err)

	// the curve is flat beyond 0.05 MeV, the window extends to 0.1 MeV
	below := sweep.Invert(1e-6, 0)
	assert.Equal(t, grid.EMax, below.Energy)
	assert.Equal(t, SaturatedHigh, below.Status)

	above := sweep.Invert(1e6, 0)
	assert.Equal(t, grid.EMin, above.Energy)
	assert.Equal(t, SaturatedLow, above.Status)

	inside := sweep.Invert(1, 0)
	assert.Equal(t, InRange, inside.Status)
	assert.Greater(t, inside.Energy, 0.01)
	assert.Less(t, inside.Energy, 0.05)

	// a sigma interval reaching past the curve minimum extends to the window edge
	wide := sweep.Invert(0.3, 0.2)
	assert.Equal(t, InRange, wide.Status)
	assert.Equal(t, grid.EMax, wide.Upper)
}

func TestUncertaintyOrdering(t *testing.T) {
	curve := fitAluminium(t)
	sweep, err := curve.Sweep(DefaultGrid())
	require.NoError(t, err)

	for _, tc := range []struct{ value, sigma float64 }{
		{1.7026, 0.1095},
		{20, 2},
		{0.5, 0.01},
		{0.3, 0.1},
	} {
		e := sweep.Invert(tc.value, tc.sigma)
		assert.LessOrEqual(t, e.Lower, e.Energy, "%+v", tc)
		assert.LessOrEqual(t, e.Energy, e.Upper, "%+v", tc)
		assert.Less(t, e.Lower, e.Upper, "%+v", tc)

		plus, minus := e.Errors()
		assert.GreaterOrEqual(t, plus, 0.)
		assert.GreaterOrEqual(t, minus, 0.)

		// attenuation falls with energy: value+sigma maps to the lower bound
		assert.Equal(t, sweep.Invert(tc.value+tc.sigma, 0).Energy, e.Lower)
		assert.Equal(t, sweep.Invert(tc.value-tc.sigma, 0).Energy, e.Upper)
	}
}

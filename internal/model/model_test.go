package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildstyl3r/effenergy/internal/material"
)

var window = material.Window{EMin: 8e-3, EMax: 1e-1}

// NIST XCOM mass attenuation coefficients of aluminium [cm^2/g] over the
// default window [MeV].
var aluminium = material.Series{
	Energy:    []float64{8e-3, 1e-2, 1.5e-2, 2e-2, 3e-2, 4e-2, 5e-2, 6e-2, 8e-2, 1e-1},
	MuOverRho: []float64{50.33, 26.23, 7.955, 3.441, 1.128, 0.5685, 0.3681, 0.2778, 0.2018, 0.1704},
}

func fitAluminium(t *testing.T) *Curve {
	t.Helper()
	curve, err := Fit(aluminium, DefaultFitConfig())
	require.NoError(t, err)
	return curve
}

func TestBSplinePartitionOfUnity(t *testing.T) {
	b := newUniformBSpline(-2, -1, 4, 2)
	require.Equal(t, 5, b.size())
	for _, x := range []float64{-2, -1.9, -1.5, -1.33, -1.01, -1, -3, 0} {
		basis := b.eval(x, nil)
		require.Len(t, basis, 5)
		sum := 0.
		for _, v := range basis {
			assert.GreaterOrEqual(t, v, 0.)
			sum += v
		}
		assert.InDelta(t, 1, sum, 1e-12, "x=%v", x)
	}
	assert.Equal(t, b.eval(-3, nil), b.eval(-2, nil), "values below the range clamp to the boundary")
}

func TestFitReproducesTrainingData(t *testing.T) {
	curve := fitAluminium(t)

	predicted, maxErr := curve.Predict(aluminium.Energy)
	assert.Equal(t, curve.MaxError(), maxErr)
	worst := 0.
	for i := range predicted {
		diff := math.Abs(predicted[i] - aluminium.MuOverRho[i])
		worst = max(worst, diff)
		assert.InEpsilon(t, aluminium.MuOverRho[i], predicted[i], 0.03, "E=%v", aluminium.Energy[i])
	}
	assert.Equal(t, worst, maxErr)
	assert.Less(t, maxErr, 1.)

	eMin, eMax := curve.Range()
	assert.InDelta(t, 8e-3, eMin, 1e-15)
	assert.InDelta(t, 1e-1, eMax, 1e-15)
}

func TestTwoPointPureElement(t *testing.T) {
	ref := material.Table{13: {Energy: []float64{0.01, 0.05}, MuOverRho: []float64{5.0, 0.2}}}
	al := material.Material{Name: "Al", Density: 2.699, Composition: []material.ElementalContribution{{AtomicNumber: 13, WeightFraction: 1.0}}}

	series, err := material.Assemble(al, ref, window)
	require.NoError(t, err)
	curve, err := Fit(series, DefaultFitConfig())
	require.NoError(t, err)

	for i, e := range series.Energy {
		predicted, maxErr := curve.Predict([]float64{e})
		assert.LessOrEqual(t, math.Abs(predicted[0]-series.MuOverRho[i]), maxErr)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	a, b := fitAluminium(t), fitAluminium(t)
	grid, err := DefaultGrid().Samples()
	require.NoError(t, err)
	pa, ea := a.Predict(grid)
	pb, eb := b.Predict(grid)
	assert.Equal(t, pa, pb)
	assert.Equal(t, ea, eb)
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name    string
		series  material.Series
		cfg     FitConfig
		wantErr error
	}{
		{
			name:    "single sample",
			series:  material.Series{Energy: []float64{0.01}, MuOverRho: []float64{5}},
			cfg:     DefaultFitConfig(),
			wantErr: ErrInsufficientData,
		},
		{
			name:    "single distinct energy",
			series:  material.Series{Energy: []float64{0.01, 0.01}, MuOverRho: []float64{5, 5}},
			cfg:     DefaultFitConfig(),
			wantErr: ErrInsufficientData,
		},
		{
			name:    "non-positive coefficient",
			series:  material.Series{Energy: []float64{0.01, 0.02}, MuOverRho: []float64{5, 0}},
			cfg:     DefaultFitConfig(),
			wantErr: material.ErrMalformedData,
		},
		{
			name:    "ragged series",
			series:  material.Series{Energy: []float64{0.01, 0.02}, MuOverRho: []float64{5}},
			cfg:     DefaultFitConfig(),
			wantErr: material.ErrMalformedData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.series, tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Fit(aluminium, FitConfig{Degree: 2, Knots: 4})
	assert.Error(t, err, "zero alpha")
}

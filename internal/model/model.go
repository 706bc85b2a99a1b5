// Package model fits mass attenuation curves in log-log space and inverts
// them to effective beam energies.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/wildstyl3r/effenergy/internal/constants"
	"github.com/wildstyl3r/effenergy/internal/material"
)

var ErrInsufficientData = errors.New("insufficient data")

// FitConfig configures the spline regression. Knots counts the boundary
// knots, so Knots+Degree-1 basis functions are fitted.
type FitConfig struct {
	Degree int
	Knots  int
	Alpha  float64 // ridge penalty
}

func DefaultFitConfig() FitConfig {
	return FitConfig{
		Degree: constants.SplineDegree,
		Knots:  constants.SplineKnots,
		Alpha:  constants.RidgeAlpha,
	}
}

// Curve is a smooth fit of log10(mu/rho) against log10(energy). It is
// immutable once fitted.
type Curve struct {
	basis     bspline
	coef      []float64
	intercept float64
	maxError  float64
}

// Fit regresses the series on a B-spline basis with ridge regularisation and
// an unpenalised intercept.
func Fit(s material.Series, cfg FitConfig) (*Curve, error) {
	if len(s.Energy) != len(s.MuOverRho) {
		return nil, fmt.Errorf("%d energies for %d coefficients: %w", len(s.Energy), len(s.MuOverRho), material.ErrMalformedData)
	}
	if cfg.Degree < 1 || cfg.Knots < 2 || !(cfg.Alpha > 0) {
		return nil, fmt.Errorf("unsupported fit configuration %+v", cfg)
	}
	n := s.Len()
	if n < 2 {
		return nil, fmt.Errorf("%d samples: %w", n, ErrInsufficientData)
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range n {
		if !(s.Energy[i] > 0) || !(s.MuOverRho[i] > 0) || math.IsInf(s.Energy[i], 0) || math.IsInf(s.MuOverRho[i], 0) {
			return nil, fmt.Errorf("sample %d (%v, %v) is not positive and finite: %w", i, s.Energy[i], s.MuOverRho[i], material.ErrMalformedData)
		}
		x[i] = math.Log10(s.Energy[i])
		y[i] = math.Log10(s.MuOverRho[i])
	}
	lo, hi := floats.Min(x), floats.Max(x)
	if !(hi > lo) {
		return nil, fmt.Errorf("single distinct energy %v: %w", s.Energy[0], ErrInsufficientData)
	}

	c := &Curve{basis: newUniformBSpline(lo, hi, cfg.Knots, cfg.Degree)}
	k := c.basis.size()

	design := make([][]float64, n)
	colMean := make([]float64, k)
	for i := range n {
		design[i] = c.basis.eval(x[i], make([]float64, k))
		floats.Add(colMean, design[i])
	}
	floats.Scale(1/float64(n), colMean)
	yMean := floats.Sum(y) / float64(n)

	gram := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	centered := make([]float64, k)
	for i := range n {
		floats.SubTo(centered, design[i], colMean)
		yc := y[i] - yMean
		for a := range k {
			rhs.SetVec(a, rhs.AtVec(a)+centered[a]*yc)
			for b := a; b < k; b++ {
				gram.SetSym(a, b, gram.At(a, b)+centered[a]*centered[b])
			}
		}
	}
	for a := range k {
		gram.SetSym(a, a, gram.At(a, a)+cfg.Alpha)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, fmt.Errorf("normal equations are not positive definite: %w", ErrInsufficientData)
	}
	w := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(w, rhs); err != nil {
		return nil, fmt.Errorf("solving normal equations: %w", err)
	}
	c.coef = make([]float64, k)
	for a := range k {
		c.coef[a] = w.AtVec(a)
	}
	c.intercept = yMean - vecmath.DotProduct(colMean, c.coef)

	predicted, _ := c.Predict(s.Energy)
	residual := make([]float64, n)
	floats.SubTo(residual, predicted, s.MuOverRho)
	c.maxError = vecmath.MaxAbs(residual)
	return c, nil
}

// Eval returns the predicted mass attenuation coefficient at energy. Energies
// outside the training range evaluate to the boundary value.
func (c *Curve) Eval(energy float64) float64 {
	return c.evalLog(math.Log10(energy), make([]float64, c.basis.size()))
}

func (c *Curve) evalLog(x float64, scratch []float64) float64 {
	b := c.basis.eval(x, scratch)
	return math.Pow(10, c.intercept+vecmath.DotProduct(b, c.coef))
}

// Predict evaluates the curve at every energy and returns the predictions
// together with the maximum training error.
func (c *Curve) Predict(energies []float64) ([]float64, float64) {
	out := make([]float64, len(energies))
	scratch := make([]float64, c.basis.size())
	for i, e := range energies {
		out[i] = c.evalLog(math.Log10(e), scratch)
	}
	return out, c.maxError
}

// MaxError is the largest absolute training residual in linear units.
func (c *Curve) MaxError() float64 {
	return c.maxError
}

// Range returns the training energy range.
func (c *Curve) Range() (eMin, eMax float64) {
	return math.Pow(10, c.basis.lo), math.Pow(10, c.basis.hi)
}

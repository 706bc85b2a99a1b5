package constants

const EnergyMin float64 = 8e-3 // [MeV]
const EnergyMax float64 = 1e-1 // [MeV]
const Resolution = 10000       // inversion grid samples

const SplineDegree = 2
const SplineKnots = 4 // boundary knots included
const RidgeAlpha float64 = 1e-3

const PixelDepth float64 = 255.
const ClipHigh float64 = 0.999 // normalised pixel mean
const ClipLow float64 = 0.001

package utils

import (
	"math"
	"slices"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Float | constraints.Integer
}

// ArgClosest returns the first index of arr whose value is nearest to target.
// NaN entries are never selected unless every entry is NaN.
func ArgClosest[T constraints.Float](arr []T, target T) (closest int) {
	best := math.Inf(1)
	for i := range arr {
		d := math.Abs(float64(arr[i] - target))
		if d < best {
			best = d
			closest = i
		}
	}
	return
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func Map[T, R any](arr []T, f func(T) R) []R {
	out := make([]R, len(arr))
	for i := range arr {
		out[i] = f(arr[i])
	}
	return out
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}

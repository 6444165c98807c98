package linear_model

import (
	"gonum.org/v1/gonum/floats"
)

// Step is the perceptron's threshold activation: 1 when z is strictly
// positive, 0 otherwise. Step(0) is 0.
func Step(z float64) int {
	if z > 0 {
		return 1
	}
	return 0
}

// augment copies x into dst and sets the trailing bias input to 1.
// dst must have length len(x)+1.
func augment(dst, x []float64) []float64 {
	copy(dst, x)
	dst[len(x)] = 1
	return dst
}

// activate returns the step of w·x. The lengths must match.
func activate(w, x []float64) int {
	return Step(floats.Dot(w, x))
}

package errors

import (
	"math"
)

// CheckNumericalStability returns a NumericalInstabilityError when any of the
// values is NaN or Inf. The values are copied into the error.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

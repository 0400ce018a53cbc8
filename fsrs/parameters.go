package fsrs

import "fmt"

// ParameterCount is the number of trainable FSRS v6 weights.
const ParameterCount = 21

// DefaultParameters are the published FSRS-6 weights, fitted on a large
// collection of review histories.
var DefaultParameters = [ParameterCount]float64{
	0.212, 1.2931, 2.3065, 8.2956,
	6.4133, 0.8334, 3.0194, 0.001,
	1.8722, 0.1666, 0.796, 1.4835,
	0.0614, 0.2629, 1.6483, 0.6014,
	1.8729, 0.5425, 0.0912, 0.0658,
	0.1542,
}

// LowerBounds and UpperBounds delimit the range each weight may be trained
// into. Rows follow the layout of DefaultParameters.
var (
	LowerBounds = [ParameterCount]float64{
		0.001, 0.001, 0.001, 0.001,
		1, 0.001, 0.001, 0.001,
		0, 0, 0.001, 0.001,
		0.001, 0.001, 0, 0,
		1, 0, 0, 0,
		0.1,
	}
	UpperBounds = [ParameterCount]float64{
		100, 100, 100, 100,
		10, 4, 4, 0.75,
		4.5, 0.8, 3.5, 5,
		0.25, 0.9, 4, 1,
		6, 2, 2, 0.8,
		0.8,
	}
)

// ValidateParameters returns ErrInvalidParameters naming the first weight
// outside its bounds.
func ValidateParameters(p [ParameterCount]float64) error {
	for i, w := range p {
		if lo, hi := LowerBounds[i], UpperBounds[i]; w < lo || w > hi {
			return fmt.Errorf("%w: w[%d] = %g not in [%g, %g]", ErrInvalidParameters, i, w, lo, hi)
		}
	}
	return nil
}

// ClampParameters pulls every weight into its bounds.
func ClampParameters(p [ParameterCount]float64) [ParameterCount]float64 {
	for i := range p {
		p[i] = min(max(p[i], LowerBounds[i]), UpperBounds[i])
	}
	return p
}

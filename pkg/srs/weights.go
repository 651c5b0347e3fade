package srs

import "fmt"

// Weights are the 21 trainable FSRS parameters, indexed w[0] through w[20].
// w[0..3] are the initial stabilities per grade, w[4..7] drive difficulty,
// w[8..10] recall stability growth, w[11..14] post-lapse stability,
// w[15..16] the hard penalty and easy bonus, w[17..19] same-day reviews,
// and w[20] the retention curve's decay exponent.
type Weights [21]float64

// DefaultWeights returns the published FSRS-6 default parameters.
func DefaultWeights() Weights {
	return Weights{
		0.212, 1.2931, 2.3065, 8.2956,
		6.4133, 0.8334, 3.0194, 0.001,
		1.8722, 0.1666, 0.796, 1.4835,
		0.0614, 0.2629, 1.6483, 0.6014,
		1.8729, 0.5425, 0.0912, 0.0658,
		0.1542,
	}
}

// weightLowerBounds and weightUpperBounds delimit the valid range per
// parameter; values outside make the retention curve degenerate.
var (
	weightLowerBounds = Weights{
		0.001, 0.001, 0.001, 0.001,
		1.0, 0.001, 0.001, 0.001,
		0.0, 0.0, 0.001, 0.001,
		0.001, 0.001, 0.0, 0.0,
		1.0, 0.0, 0.0, 0.0,
		0.1,
	}
	weightUpperBounds = Weights{
		100.0, 100.0, 100.0, 100.0,
		10.0, 4.0, 4.0, 0.75,
		4.5, 0.8, 3.5, 5.0,
		0.25, 0.9, 4.0, 1.0,
		6.0, 2.0, 2.0, 0.8,
		0.8,
	}
)

// Validate checks that every parameter lies within its allowed bounds.
func (w Weights) Validate() error {
	for i := range w {
		if w[i] < weightLowerBounds[i] || w[i] > weightUpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidWeights, i, w[i], weightLowerBounds[i], weightUpperBounds[i])
		}
	}
	return nil
}

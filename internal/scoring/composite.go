package scoring

import (
	"math"

	"speaking-confidence-go/internal/types"
)

// DimensionWeights is the declared scoring policy: how much each dimension
// contributes to the composite. Changing these is a versioned policy change,
// not a tuning knob. The weights sum to 1.0 by construction.
var DimensionWeights = [5]float64{0.20, 0.25, 0.25, 0.15, 0.15}

// Composite converts each 0-5 dimension score to a percentage and combines
// them with the policy weights, rounding to the nearest integer.
func Composite(dims [5]types.DimensionScore) int {
	var sum float64
	for i, d := range dims {
		sum += DimensionWeights[i] * float64(d.Score) / 5 * 100
	}
	return int(math.Round(sum))
}

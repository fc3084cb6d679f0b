package features

import (
	"math"

	"github.com/helix-lab/signal-ml/internal/types"
)

// BuildLabels derives binary labels from forward returns:
//
//	future_return[t] = close[t+horizon]/close[t] - 1
//	label[t] = 1 if future_return[t] > threshold else 0
//
// The last horizon rows have no full look-ahead window; their labels are NaN
// and must be excluded by the caller before training.
func BuildLabels(bars []types.Bar, horizon int, threshold float64) []float64 {
	n := len(bars)
	labels := make([]float64, n)

	for t := 0; t < n; t++ {
		if t+horizon >= n {
			labels[t] = math.NaN()

			continue
		}

		futureReturn := bars[t+horizon].Close/bars[t].Close - 1
		if futureReturn > threshold {
			labels[t] = 1
		} else {
			labels[t] = 0
		}
	}

	return labels
}

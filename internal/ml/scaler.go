package ml

import (
	"math"

	"github.com/helix-lab/signal-ml/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance using
// statistics learned from the training split only. Columns with zero variance
// scale by 1 so constant features pass through centered instead of dividing
// by zero.
type StandardScaler struct {
	Means []float64
	Stds  []float64
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// RestoredScaler rebuilds a fitted scaler from persisted state.
func RestoredScaler(means, stds []float64) *StandardScaler {
	return &StandardScaler{Means: means, Stds: stds}
}

// Fit implements Scaler. Uses the population standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New(errors.ErrCodeInsufficientData, "cannot fit scaler on empty matrix")
	}

	cols := len(X[0])
	s.Means = make([]float64, cols)
	s.Stds = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for _, row := range X {
			sum += row[j]
		}

		mean := sum / float64(len(X))

		ss := 0.0

		for _, row := range X {
			d := row[j] - mean
			ss += d * d
		}

		std := math.Sqrt(ss / float64(len(X)))
		if std == 0 {
			std = 1
		}

		s.Means[j] = mean
		s.Stds[j] = std
	}

	return nil
}

// Transform implements Scaler.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if len(s.Means) == 0 {
		return nil, errors.New(errors.ErrCodeScalerNotFitted, "scaler has not been fitted")
	}

	out := make([][]float64, len(X))

	for i, row := range X {
		if len(row) != len(s.Means) {
			return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
				"row has %d features, scaler was fitted on %d", len(row), len(s.Means))
		}

		scaled := make([]float64, len(row))
		for j, value := range row {
			scaled[j] = (value - s.Means[j]) / s.Stds[j]
		}

		out[i] = scaled
	}

	return out, nil
}

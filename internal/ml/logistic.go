package ml

import (
	"math"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/helix-lab/signal-ml/pkg/errors"
)

// LogisticRegression is a binary classifier trained with full-batch gradient
// descent on the cross-entropy loss. Class-balanced sample weights address
// label imbalance without resampling, and the seeded weight initialization
// makes repeated fits on identical data bit-for-bit reproducible.
type LogisticRegression struct {
	Weights []float64
	Bias    float64

	// C is the inverse regularization strength (L2), matching the usual
	// convention: smaller C means stronger regularization.
	C float64

	// MaxEpochs bounds the gradient descent iterations.
	MaxEpochs int

	// Tolerance stops training early when the loss improvement between
	// epochs falls below it.
	Tolerance float64

	// LearningRate is the gradient descent step size.
	LearningRate float64

	// Seed fixes the weight initialization for reproducibility.
	Seed int64

	// BalanceClasses enables class-balanced sample weighting.
	BalanceClasses bool

	// ShowProgress renders a progress bar over training epochs.
	ShowProgress bool
}

// NewLogisticRegression creates a classifier with the training defaults:
// C=1.0, 1000 epochs, balanced class weights, seed 42.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		C:              1.0,
		MaxEpochs:      1000,
		Tolerance:      1e-7,
		LearningRate:   0.1,
		Seed:           42,
		BalanceClasses: true,
	}
}

// RestoredLogisticRegression rebuilds a fitted classifier from persisted
// state. Only prediction is supported on a restored model.
func RestoredLogisticRegression(weights []float64, bias float64) *LogisticRegression {
	return &LogisticRegression{
		Weights: weights,
		Bias:    bias,
	}
}

// Fit implements Classifier.
func (l *LogisticRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.Newf(errors.ErrCodeDimensionMismatch,
			"feature matrix has %d rows, labels have %d", len(X), len(y))
	}

	cols := len(X[0])
	for _, row := range X {
		if len(row) != cols {
			return errors.New(errors.ErrCodeDimensionMismatch, "ragged feature matrix")
		}
	}

	positives := 0

	for _, label := range y {
		if label != 0 && label != 1 {
			return errors.Newf(errors.ErrCodeInvalidParameter, "label must be 0 or 1, got %v", label)
		}

		if label == 1 {
			positives++
		}
	}

	negatives := len(y) - positives
	if positives == 0 || negatives == 0 {
		return errors.New(errors.ErrCodeDegenerateLabels, "training labels contain a single class")
	}

	sampleWeights := make([]float64, len(y))

	for i, label := range y {
		sampleWeights[i] = 1
		if l.BalanceClasses {
			// n / (n_classes * n_class), sklearn's "balanced" heuristic
			if label == 1 {
				sampleWeights[i] = float64(len(y)) / (2 * float64(positives))
			} else {
				sampleWeights[i] = float64(len(y)) / (2 * float64(negatives))
			}
		}
	}

	weightSum := 0.0
	for _, w := range sampleWeights {
		weightSum += w
	}

	rng := rand.New(rand.NewSource(l.Seed))
	l.Weights = make([]float64, cols)

	for j := range l.Weights {
		l.Weights[j] = rng.NormFloat64() * 0.01
	}

	l.Bias = 0

	var bar *progressbar.ProgressBar
	if l.ShowProgress {
		bar = progressbar.NewOptions(l.MaxEpochs,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("fitting classifier"),
			progressbar.OptionClearOnFinish(),
		)
	}

	lambda := 0.0
	if l.C > 0 {
		lambda = 1 / (l.C * weightSum)
	}

	prevLoss := math.Inf(1)

	for epoch := 0; epoch < l.MaxEpochs; epoch++ {
		gradW := make([]float64, cols)
		gradB := 0.0
		loss := 0.0

		for i, row := range X {
			p := sigmoid(l.decision(row))
			diff := sampleWeights[i] * (p - y[i])

			for j, value := range row {
				gradW[j] += diff * value
			}

			gradB += diff
			loss += sampleWeights[i] * crossEntropy(p, y[i])
		}

		for j := range gradW {
			gradW[j] = gradW[j]/weightSum + lambda*l.Weights[j]
			l.Weights[j] -= l.LearningRate * gradW[j]
		}

		l.Bias -= l.LearningRate * (gradB / weightSum)

		loss /= weightSum

		if bar != nil {
			_ = bar.Add(1)
		}

		if math.Abs(prevLoss-loss) < l.Tolerance {
			break
		}

		prevLoss = loss
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return nil
}

// PredictProbability implements Classifier.
func (l *LogisticRegression) PredictProbability(x []float64) (float64, error) {
	if len(l.Weights) == 0 {
		return 0, errors.New(errors.ErrCodeModelNotFitted, "classifier has not been fitted")
	}

	if len(x) != len(l.Weights) {
		return 0, errors.Newf(errors.ErrCodeDimensionMismatch,
			"row has %d features, classifier was fitted on %d", len(x), len(l.Weights))
	}

	return sigmoid(l.decision(x)), nil
}

func (l *LogisticRegression) decision(x []float64) float64 {
	z := l.Bias
	for j, value := range x {
		z += l.Weights[j] * value
	}

	return z
}

// sigmoid returns 1/(1+e^-x) with clamping for numerical stability.
func sigmoid(x float64) float64 {
	if x > 20 {
		return 1
	}

	if x < -20 {
		return 0
	}

	return 1 / (1 + math.Exp(-x))
}

func crossEntropy(p, y float64) float64 {
	const eps = 1e-12

	p = math.Min(math.Max(p, eps), 1-eps)

	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// Package ml provides the pluggable classifier and scaler capabilities used
// by the training and inference pipelines. Any binary probabilistic
// classifier exposing Fit/PredictProbability satisfies the contract; the
// bundled implementation is a logistic regression with class-balanced
// weighting, paired with a zero-mean unit-variance standard scaler.
package ml

// Classifier is a binary probabilistic classifier.
type Classifier interface {
	// Fit trains the classifier on feature rows X and labels y (0 or 1).
	Fit(X [][]float64, y []float64) error

	// PredictProbability returns the probability of the positive class for a
	// single feature row.
	PredictProbability(x []float64) (float64, error)
}

// Scaler learns a feature-wise transformation on training data and applies
// it identically at inference time.
type Scaler interface {
	// Fit learns the transformation parameters from X.
	Fit(X [][]float64) error

	// Transform applies the fitted transformation, returning new rows.
	Transform(X [][]float64) ([][]float64, error)
}

package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/helix-lab/signal-ml/internal/features"
	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/ml"
	"github.com/helix-lab/signal-ml/internal/types"
	"github.com/helix-lab/signal-ml/pkg/errors"
)

// TrainingConfig controls a training run.
type TrainingConfig struct {
	// Horizon is the number of bars ahead used for the forward return.
	Horizon int

	// Threshold is the minimum forward return labeled as profitable.
	Threshold float64

	// TestFraction is the chronological suffix held out for evaluation.
	TestFraction float64

	// MinSamples is the minimum number of valid rows required to train.
	MinSamples int

	// Seed fixes every stochastic step for reproducibility.
	Seed int64

	// BundlePath is where the pipeline bundle is persisted.
	BundlePath string

	// ShowProgress renders a progress bar during the classifier fit.
	ShowProgress bool
}

// DefaultTrainingConfig returns the standard training configuration.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Horizon:      10,
		Threshold:    0.001,
		TestFraction: 0.2,
		MinSamples:   100,
		Seed:         42,
		BundlePath:   "storage/pipeline_bundle.json",
	}
}

// Trainer orchestrates feature/label construction, the chronological split,
// scaler and classifier fitting, evaluation, and bundle persistence.
// Training is an offline, operator-supervised path: errors surface directly
// and no partial bundle is ever written.
type Trainer struct {
	config TrainingConfig
	log    *logger.Logger
}

// NewTrainer creates a Trainer. The configuration is validated up front so a
// misconfigured run fails before any work is done.
func NewTrainer(config TrainingConfig, log *logger.Logger) (*Trainer, error) {
	if config.Horizon < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidHorizon, "horizon must be at least 1, got %d", config.Horizon)
	}

	if config.TestFraction <= 0 || config.TestFraction >= 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidTestFraction,
			"test fraction must be in (0,1), got %v", config.TestFraction)
	}

	if config.BundlePath == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "bundle path must be set")
	}

	if config.MinSamples < 1 {
		config.MinSamples = 1
	}

	return &Trainer{
		config: config,
		log:    log,
	}, nil
}

// Train runs the full training pipeline over the bar series and persists the
// resulting bundle.
func (t *Trainer) Train(ctx context.Context, bars []types.Bar) (*types.TrainingReport, error) {
	t.log.Info("Building features",
		zap.Int("bars", len(bars)),
		zap.Int("horizon", t.config.Horizon),
		zap.Float64("threshold", t.config.Threshold),
	)

	matrix := features.Build(bars)
	labels := features.BuildLabels(bars, t.config.Horizon, t.config.Threshold)

	X, y := validRows(matrix, labels)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.log.Info("Built training set",
		zap.Int("valid_samples", len(X)),
		zap.Int("features", len(matrix.Names)),
	)

	if len(X) < t.config.MinSamples {
		return nil, errors.Newf(errors.ErrCodeInsufficientData,
			"not enough training data: %d samples (need at least %d)", len(X), t.config.MinSamples)
	}

	// chronological split, no shuffling: the test suffix must come strictly
	// after the training data to avoid look-ahead leakage
	testCount := int(math.Ceil(float64(len(X)) * t.config.TestFraction))
	trainCount := len(X) - testCount

	if trainCount < 1 || testCount < 1 {
		return nil, errors.Newf(errors.ErrCodeInsufficientData,
			"split produced %d train and %d test samples", trainCount, testCount)
	}

	XTrain, yTrain := X[:trainCount], y[:trainCount]
	XTest, yTest := X[trainCount:], y[trainCount:]

	scaler := ml.NewStandardScaler()
	if err := scaler.Fit(XTrain); err != nil {
		return nil, err
	}

	XTrainScaled, err := scaler.Transform(XTrain)
	if err != nil {
		return nil, err
	}

	XTestScaled, err := scaler.Transform(XTest)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.log.Info("Fitting classifier", zap.Int("train_samples", trainCount))

	classifier := ml.NewLogisticRegression()
	classifier.Seed = t.config.Seed
	classifier.ShowProgress = t.config.ShowProgress

	if err := classifier.Fit(XTrainScaled, yTrain); err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelFitFailed, "classifier fit failed", err)
	}

	probabilities := make([]float64, len(XTestScaled))

	for i, row := range XTestScaled {
		p, err := classifier.PredictProbability(row)
		if err != nil {
			return nil, err
		}

		probabilities[i] = p
	}

	metrics := ml.Evaluate(probabilities, yTest)

	runID := uuid.NewString()
	now := time.Now().UTC()

	bundle := &Bundle{
		SchemaVersion: BundleSchemaVersion,
		RunID:         runID,
		CreatedAt:     now,
		FeatureNames:  matrix.Names,
		Scaler: ScalerState{
			Means: scaler.Means,
			Stds:  scaler.Stds,
		},
		Model: ModelState{
			Weights: classifier.Weights,
			Bias:    classifier.Bias,
		},
		Training: TrainingMeta{
			Horizon:      t.config.Horizon,
			Threshold:    t.config.Threshold,
			TestFraction: t.config.TestFraction,
			Bars:         len(bars),
			TrainSamples: trainCount,
			TestSamples:  testCount,
		},
	}

	if err := bundle.Save(t.config.BundlePath); err != nil {
		return nil, err
	}

	t.log.Info("Training complete",
		zap.String("run_id", runID),
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("f1", metrics.F1),
		zap.String("bundle", t.config.BundlePath),
	)

	return &types.TrainingReport{
		RunID:        runID,
		Accuracy:     metrics.Accuracy,
		Precision:    metrics.Precision,
		Recall:       metrics.Recall,
		F1:           metrics.F1,
		TrainSamples: trainCount,
		TestSamples:  testCount,
		FeatureCount: len(matrix.Names),
		BundlePath:   t.config.BundlePath,
		TrainedAt:    now,
	}, nil
}

// validRows strips rows whose label is undefined (the last horizon bars) or
// whose features contain NaN. After the builder's cleanup pass no feature is
// NaN, so in practice only the label cutoff excludes rows; the explicit
// feature check keeps the mask correct if the cleanup invariant ever changes.
func validRows(matrix *features.Matrix, labels []float64) ([][]float64, []float64) {
	var (
		X [][]float64
		y []float64
	)

	for t := 0; t < matrix.Len(); t++ {
		if math.IsNaN(labels[t]) {
			continue
		}

		valid := true

		for _, value := range matrix.Rows[t] {
			if math.IsNaN(value) {
				valid = false

				break
			}
		}

		if !valid {
			continue
		}

		X = append(X, matrix.Rows[t])
		y = append(y, labels[t])
	}

	return X, y
}

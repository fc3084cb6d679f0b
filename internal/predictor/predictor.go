// Package predictor implements the serving side of the pipeline. It mirrors
// the training-time feature computation exactly and defends the serving
// boundary: no error ever propagates to the caller, every failure mode maps
// to a neutral 0.5 confidence so the trading engine treats a broken or
// missing model as "no opinion".
package predictor

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/helix-lab/signal-ml/internal/features"
	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/pipeline"
	"github.com/helix-lab/signal-ml/internal/types"
)

// DefaultMinBars is the minimum history needed for stable rolling features.
// Below this the predictor degrades to neutral instead of refusing.
const DefaultMinBars = 60

// Config controls the predictor.
type Config struct {
	// BundlePath is where the persisted pipeline bundle lives.
	BundlePath string

	// MinBars overrides DefaultMinBars when positive.
	MinBars int
}

// Predictor scores recent bars against a persisted pipeline bundle. The
// bundle is re-read on every call so a concurrent retrain (atomic
// replace-on-write) is picked up without restart; a partial or corrupt read
// degrades to neutral.
type Predictor struct {
	config Config
	log    *logger.Logger
}

// NewPredictor creates a Predictor.
func NewPredictor(config Config, log *logger.Logger) *Predictor {
	if config.MinBars <= 0 {
		config.MinBars = DefaultMinBars
	}

	return &Predictor{
		config: config,
		log:    log,
	}
}

// Predict returns a confidence score for the supplied bars. It never returns
// an error: failures are reported inside the result.
func (p *Predictor) Predict(bars []types.Bar) types.PredictionResult {
	bundle, err := pipeline.LoadBundle(p.config.BundlePath)
	if err != nil {
		p.log.Warn("Prediction degraded to neutral: bundle unavailable",
			zap.String("bundle", p.config.BundlePath),
			zap.Error(err),
		)

		return types.NeutralPrediction(err.Error())
	}

	if len(bars) < p.config.MinBars {
		// not an error: the engine keeps trading on a neutral signal
		return types.PredictionResult{
			Success:    true,
			Confidence: 0.5,
			Warning:    fmt.Sprintf("Not enough bars for prediction (%d < %d)", len(bars), p.config.MinBars),
		}
	}

	confidence, err := p.score(bars, bundle)
	if err != nil {
		p.log.Error("Prediction failed, returning neutral confidence", zap.Error(err))

		return types.NeutralPrediction(err.Error())
	}

	return types.PredictionResult{
		Success:      true,
		Confidence:   confidence,
		FeaturesUsed: len(bundle.FeatureNames),
		BarsAnalyzed: len(bars),
	}
}

func (p *Predictor) score(bars []types.Bar, bundle *pipeline.Bundle) (float64, error) {
	matrix := features.Build(bars)

	// select exactly the fit-time feature set, in the fit-time order; column
	// re-indexing by name is the defense against train/serve schema drift
	row, err := matrix.SelectRow(matrix.Len()-1, bundle.FeatureNames)
	if err != nil {
		return 0, err
	}

	scaled, err := bundle.RestoreScaler().Transform([][]float64{row})
	if err != nil {
		return 0, err
	}

	probability, err := bundle.RestoreClassifier().PredictProbability(scaled[0])
	if err != nil {
		return 0, err
	}

	confidence := math.Round(probability*10000) / 10000
	confidence = math.Min(math.Max(confidence, 0), 1)

	return confidence, nil
}

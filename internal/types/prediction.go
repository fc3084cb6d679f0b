package types

// PredictionResult is the response returned for every prediction call. The
// serving boundary never surfaces an error directly: failure modes map to
// Success=false with a neutral 0.5 confidence so the trading engine treats a
// missing or broken model as "no opinion" rather than a fault.
type PredictionResult struct {
	// Success reports whether a usable response was produced. It is true even
	// for the degraded not-enough-bars case, which carries a Warning instead.
	Success bool `json:"success"`

	// Confidence is the model's estimated probability that the signal is
	// profitable, in [0,1]. 0.5 is the neutral fallback.
	Confidence float64 `json:"confidence"`

	// Error describes why the prediction failed, when Success is false.
	Error string `json:"error,omitempty"`

	// Warning describes a degraded-but-successful prediction.
	Warning string `json:"warning,omitempty"`

	// FeaturesUsed is the number of features fed to the classifier.
	FeaturesUsed int `json:"features_used,omitempty"`

	// BarsAnalyzed is the number of input bars.
	BarsAnalyzed int `json:"bars_analyzed,omitempty"`
}

// NeutralPrediction returns the fallback response for a failed prediction.
func NeutralPrediction(reason string) PredictionResult {
	return PredictionResult{
		Success:    false,
		Confidence: 0.5,
		Error:      reason,
	}
}

// Direction buckets a confidence score the way the trading engine frames it.
func (r PredictionResult) Direction() string {
	switch {
	case r.Confidence > 0.6:
		return "bullish"
	case r.Confidence < 0.4:
		return "bearish"
	default:
		return "neutral"
	}
}

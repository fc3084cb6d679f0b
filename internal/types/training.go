package types

import "time"

// TrainingReport summarizes a completed training run.
type TrainingReport struct {
	// RunID uniquely identifies this training run.
	RunID string `json:"run_id"`

	// Metrics computed on the held-out chronological test split.
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`

	TrainSamples int `json:"train_samples"`
	TestSamples  int `json:"test_samples"`
	FeatureCount int `json:"feature_count"`

	// BundlePath is where the pipeline bundle was persisted.
	BundlePath string `json:"bundle_path"`

	TrainedAt time.Time `json:"trained_at"`
}

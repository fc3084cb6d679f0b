package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/helix-lab/signal-ml/internal/ml"
	"github.com/helix-lab/signal-ml/pkg/errors"
)

// BundleSchemaVersion is written into every persisted bundle. Readers accept
// any 1.x bundle; a major bump means the serialized state is no longer
// compatible with the current scaler/classifier implementations.
const BundleSchemaVersion = "1.0.0"

const bundleSchemaConstraint = "^1.0"

// Bundle is the persisted pipeline artifact: a fitted classifier, a fitted
// scaler, and the exact ordered feature schema used at fit time. It is
// written once by the trainer and read-only thereafter.
type Bundle struct {
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`
	CreatedAt     time.Time `json:"created_at"`

	// FeatureNames is the training matrix's column order. Inference must
	// select exactly these columns in exactly this order.
	FeatureNames []string `json:"feature_names"`

	Scaler ScalerState `json:"scaler"`
	Model  ModelState  `json:"model"`

	Training TrainingMeta `json:"training"`
}

// ScalerState is the persisted StandardScaler state.
type ScalerState struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// ModelState is the persisted LogisticRegression state.
type ModelState struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainingMeta records how the bundle was produced.
type TrainingMeta struct {
	Horizon      int     `json:"horizon"`
	Threshold    float64 `json:"threshold"`
	TestFraction float64 `json:"test_fraction"`
	Bars         int     `json:"bars"`
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
}

// RestoreScaler rebuilds the fitted scaler from the bundle.
func (b *Bundle) RestoreScaler() ml.Scaler {
	return ml.RestoredScaler(b.Scaler.Means, b.Scaler.Stds)
}

// RestoreClassifier rebuilds the fitted classifier from the bundle.
func (b *Bundle) RestoreClassifier() ml.Classifier {
	return ml.RestoredLogisticRegression(b.Model.Weights, b.Model.Bias)
}

// Save persists the bundle with an atomic replace-on-write: the document is
// written to a temporary file in the target directory and renamed into
// place, so a concurrent reader never observes a half-written bundle.
func (b *Bundle) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeBundleWriteFailed, "failed to encode bundle", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeBundleWriteFailed, err, "failed to create bundle directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".bundle-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeBundleWriteFailed, "failed to create temporary bundle file", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return errors.Wrap(errors.ErrCodeBundleWriteFailed, "failed to write bundle", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return errors.Wrap(errors.ErrCodeBundleWriteFailed, "failed to close temporary bundle file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return errors.Wrapf(errors.ErrCodeBundleWriteFailed, err, "failed to move bundle into place at %s", path)
	}

	return nil
}

// LoadBundle reads and validates a persisted bundle. A missing file maps to
// ErrCodeBundleNotFound, undecodable or internally inconsistent state to
// ErrCodeBundleCorrupt, and a schema major-version mismatch to
// ErrCodeBundleIncompatible.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeBundleNotFound, "no bundle at %s (model not trained yet)", path)
		}

		return nil, errors.Wrapf(errors.ErrCodeBundleNotFound, err, "failed to read bundle at %s", path)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeBundleCorrupt, err, "failed to decode bundle at %s", path)
	}

	if err := bundle.validate(); err != nil {
		return nil, err
	}

	return &bundle, nil
}

func (b *Bundle) validate() error {
	version, err := semver.NewVersion(b.SchemaVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeBundleCorrupt, err, "invalid bundle schema version %q", b.SchemaVersion)
	}

	constraint, err := semver.NewConstraint(bundleSchemaConstraint)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "invalid schema constraint", err)
	}

	if !constraint.Check(version) {
		return errors.Newf(errors.ErrCodeBundleIncompatible,
			"bundle schema version %s is not compatible with %s", b.SchemaVersion, bundleSchemaConstraint)
	}

	n := len(b.FeatureNames)
	if n == 0 {
		return errors.New(errors.ErrCodeBundleCorrupt, "bundle has no feature names")
	}

	if len(b.Scaler.Means) != n || len(b.Scaler.Stds) != n || len(b.Model.Weights) != n {
		return errors.Newf(errors.ErrCodeBundleCorrupt,
			"bundle state is inconsistent: %d features, %d means, %d stds, %d weights",
			n, len(b.Scaler.Means), len(b.Scaler.Stds), len(b.Model.Weights))
	}

	return nil
}

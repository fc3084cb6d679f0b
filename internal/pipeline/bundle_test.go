package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/helix-lab/signal-ml/pkg/errors"
)

type BundleTestSuite struct {
	suite.Suite
	tempDir string
}

func TestBundleSuite(t *testing.T) {
	suite.Run(t, new(BundleTestSuite))
}

func (suite *BundleTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "bundle_test")
	suite.NoError(err)
	suite.tempDir = tempDir
}

func (suite *BundleTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *BundleTestSuite) sampleBundle() *Bundle {
	return &Bundle{
		SchemaVersion: BundleSchemaVersion,
		RunID:         "test-run",
		CreatedAt:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FeatureNames:  []string{"returns_1", "macd"},
		Scaler: ScalerState{
			Means: []float64{0.1, 0.2},
			Stds:  []float64{1.1, 1.2},
		},
		Model: ModelState{
			Weights: []float64{0.5, -0.5},
			Bias:    0.05,
		},
		Training: TrainingMeta{
			Horizon:      10,
			Threshold:    0.001,
			TestFraction: 0.2,
			Bars:         500,
			TrainSamples: 392,
			TestSamples:  98,
		},
	}
}

func (suite *BundleTestSuite) TestSaveAndLoad() {
	path := filepath.Join(suite.tempDir, "bundle.json")
	bundle := suite.sampleBundle()

	suite.NoError(bundle.Save(path))

	loaded, err := LoadBundle(path)
	suite.NoError(err)
	suite.Equal(bundle.FeatureNames, loaded.FeatureNames)
	suite.Equal(bundle.Scaler, loaded.Scaler)
	suite.Equal(bundle.Model, loaded.Model)
	suite.Equal(bundle.Training, loaded.Training)
	suite.Equal(bundle.RunID, loaded.RunID)
}

func (suite *BundleTestSuite) TestSaveCreatesDirectory() {
	path := filepath.Join(suite.tempDir, "nested", "dir", "bundle.json")
	suite.NoError(suite.sampleBundle().Save(path))

	_, err := LoadBundle(path)
	suite.NoError(err)
}

func (suite *BundleTestSuite) TestSaveOverwritesAtomically() {
	path := filepath.Join(suite.tempDir, "bundle.json")

	first := suite.sampleBundle()
	suite.NoError(first.Save(path))

	second := suite.sampleBundle()
	second.RunID = "second-run"
	suite.NoError(second.Save(path))

	loaded, err := LoadBundle(path)
	suite.NoError(err)
	suite.Equal("second-run", loaded.RunID)

	// no stray temporary files left behind
	entries, err := os.ReadDir(suite.tempDir)
	suite.NoError(err)
	suite.Len(entries, 1)
}

func (suite *BundleTestSuite) TestLoadMissing() {
	_, err := LoadBundle(filepath.Join(suite.tempDir, "nope.json"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBundleNotFound))
}

func (suite *BundleTestSuite) TestLoadCorruptJSON() {
	path := filepath.Join(suite.tempDir, "bundle.json")
	suite.NoError(os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadBundle(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBundleCorrupt))
}

func (suite *BundleTestSuite) TestLoadIncompatibleSchema() {
	path := filepath.Join(suite.tempDir, "bundle.json")
	bundle := suite.sampleBundle()
	bundle.SchemaVersion = "2.0.0"
	suite.NoError(bundle.Save(path))

	_, err := LoadBundle(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBundleIncompatible))
}

func (suite *BundleTestSuite) TestLoadInconsistentState() {
	path := filepath.Join(suite.tempDir, "bundle.json")
	bundle := suite.sampleBundle()
	bundle.Model.Weights = []float64{0.5} // one weight, two features
	suite.NoError(bundle.Save(path))

	_, err := LoadBundle(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBundleCorrupt))
}

func (suite *BundleTestSuite) TestRestore() {
	bundle := suite.sampleBundle()

	scaler := bundle.RestoreScaler()
	scaled, err := scaler.Transform([][]float64{{0.1, 0.2}})
	suite.NoError(err)
	suite.InDelta(0.0, scaled[0][0], 1e-12)

	classifier := bundle.RestoreClassifier()
	p, err := classifier.PredictProbability([]float64{0, 0})
	suite.NoError(err)
	suite.InDelta(0.5125, p, 0.001) // sigmoid(0.05)
}

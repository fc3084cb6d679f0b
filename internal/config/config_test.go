package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/helix-lab/signal-ml/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
	tempDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "config_test")
	suite.NoError(err)
	suite.tempDir = tempDir
}

func (suite *ConfigTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *ConfigTestSuite) write(content string) string {
	path := filepath.Join(suite.tempDir, "config.yaml")
	suite.NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *ConfigTestSuite) TestDefaults() {
	config := DefaultConfig()
	suite.NoError(config.Validate())
	suite.Equal(10, config.Training.Horizon)
	suite.Equal(0.001, config.Training.Threshold)
	suite.Equal(0.2, config.Training.TestFraction)
	suite.Equal(100, config.Training.MinSamples)
	suite.Equal(60, config.Prediction.MinBars)
	suite.Equal("storage/pipeline_bundle.json", config.Model.BundlePath)
}

func (suite *ConfigTestSuite) TestLoadOverridesDefaults() {
	path := suite.write(`
training:
  horizon: 5
  threshold: 0.002
model:
  bundle_path: /tmp/model.json
`)

	config, err := Load(path)
	suite.NoError(err)
	suite.Equal(5, config.Training.Horizon)
	suite.Equal(0.002, config.Training.Threshold)
	suite.Equal("/tmp/model.json", config.Model.BundlePath)

	// untouched sections keep defaults
	suite.Equal(0.2, config.Training.TestFraction)
	suite.Equal(60, config.Prediction.MinBars)
}

func (suite *ConfigTestSuite) TestLoadInvalidValues() {
	path := suite.write(`
training:
  test_fraction: 1.5
`)

	_, err := Load(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.tempDir, "nope.yaml"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadMalformedYAML() {
	path := suite.write("training: [not a map")

	_, err := Load(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	suite.NoError(err)
	suite.Contains(schema, "training")
	suite.Contains(schema, "bundle_path")
	suite.Contains(schema, "test_fraction")
}

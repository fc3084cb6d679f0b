// Package dataset loads OHLCV bar datasets for training. Bars are produced
// by an external backtest/dashboard subsystem; this package only reads them.
// Supported formats: CSV, Parquet (through DuckDB), and DuckDB database
// files.
package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/types"
	"github.com/helix-lab/signal-ml/pkg/errors"
)

// LoadBars reads a bars dataset, dispatching on the file extension.
// The returned slice preserves the dataset's time order.
func LoadBars(path string, log *logger.Logger) ([]types.Bar, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDatasetNotFound, err, "dataset not found at %s", path)
	}

	var (
		bars []types.Bar
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		bars, err = loadCSV(path)
	case ".parquet", ".duckdb", ".db":
		bars, err = loadDuckDB(path, log)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported dataset format: %s", filepath.Ext(path))
	}

	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyDataset, "dataset at %s contains no bars", path)
	}

	log.Info("Loaded bars dataset",
		zap.String("path", path),
		zap.Int("bars", len(bars)),
	)

	return bars, nil
}

func loadDuckDB(path string, log *logger.Logger) ([]types.Bar, error) {
	loader, err := NewDuckDBLoader(path, log)
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	return loader.ReadBars(optional.None[time.Time](), optional.None[time.Time]())
}

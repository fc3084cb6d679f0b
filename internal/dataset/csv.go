package dataset

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/helix-lab/signal-ml/internal/types"
	"github.com/helix-lab/signal-ml/pkg/errors"
)

// loadCSV reads a CSV bars file with a header row of
// time,open,high,low,close,volume. Timestamps must be RFC3339.
func loadCSV(path string) ([]types.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDatasetNotFound, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	var bars []types.Bar
	if err := gocsv.UnmarshalFile(file, &bars); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDatasetParseFailed, err, "failed to parse CSV file %s", path)
	}

	return bars, nil
}

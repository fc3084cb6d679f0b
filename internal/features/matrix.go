package features

import (
	"github.com/helix-lab/signal-ml/pkg/errors"
)

// Matrix is an ordered feature matrix: one row per input bar, columns in a
// fixed, named order. The column set and order must be identical between
// training and inference; the bundle stores the fit-time Names list and
// inference re-indexes by name through SelectRow rather than trusting
// positions.
type Matrix struct {
	Names []string
	Rows  [][]float64

	index map[string]int
}

func newMatrix(names []string, rows [][]float64) *Matrix {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	return &Matrix{
		Names: names,
		Rows:  rows,
		index: index,
	}
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.Rows)
}

// Column returns the column index for a feature name.
func (m *Matrix) Column(name string) (int, bool) {
	i, ok := m.index[name]

	return i, ok
}

// SelectRow extracts row t reordered to exactly the given feature names.
// A name absent from the matrix is an error: a schema mismatch between the
// persisted bundle and the builder must never be silently zero-filled.
func (m *Matrix) SelectRow(t int, names []string) ([]float64, error) {
	if t < 0 || t >= len(m.Rows) {
		return nil, errors.Newf(errors.ErrCodeFeatureDimension, "row %d out of range (have %d rows)", t, len(m.Rows))
	}

	out := make([]float64, len(names))

	for i, name := range names {
		col, ok := m.index[name]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeFeatureNotFound, "feature %q not produced by the feature builder", name)
		}

		out[i] = m.Rows[t][col]
	}

	return out, nil
}

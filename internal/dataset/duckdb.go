package dataset

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/types"
	"github.com/helix-lab/signal-ml/pkg/errors"
)

// DuckDBLoader reads bars through DuckDB. A Parquet path is exposed as a view
// over read_parquet; a DuckDB database file is expected to contain a `bars`
// table or view with time/open/high/low/close/volume columns.
type DuckDBLoader struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBLoader opens a loader for the given dataset path.
func NewDuckDBLoader(path string, log *logger.Logger) (*DuckDBLoader, error) {
	isParquet := strings.EqualFold(filepath.Ext(path), ".parquet")

	dbPath := path
	if isParquet {
		// in-memory database with a view over the parquet file
		dbPath = ""
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to open DuckDB at %s", path)
	}

	loader := &DuckDBLoader{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if isParquet {
		if err := loader.initializeParquet(path); err != nil {
			db.Close()

			return nil, err
		}
	}

	return loader, nil
}

func (d *DuckDBLoader) initializeParquet(path string) error {
	d.logger.Debug("Creating bars view over parquet file", zap.String("path", path))

	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM read_parquet('%s');`, strings.ReplaceAll(path, "'", "''"))
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to create view over %s", path)
	}

	return nil
}

// Count returns the number of bars, optionally restricted to a time range.
func (d *DuckDBLoader) Count(start, end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From("bars")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadBars returns bars in ascending time order, optionally restricted to a
// time range.
func (d *DuckDBLoader) ReadBars(start, end optional.Option[time.Time]) ([]types.Bar, error) {
	builder := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		OrderBy("time ASC")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bars query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDatasetParseFailed, "failed to scan bar row", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bar rows", err)
	}

	return bars, nil
}

// Close releases the underlying database handle.
func (d *DuckDBLoader) Close() error {
	return d.db.Close()
}

// Package dedup implements the batch job that removes duplicate play
// events from a cataloged table and persists the survivors as a
// columnar copy.
package dedup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"playlake/internal/catalog"
	"playlake/internal/storage"
)

// Deduplication key and its tie-break. When several rows share a
// played_at, the one observed earliest by the pipeline survives.
const (
	dedupColumn    = "played_at"
	tieBreakColumn = "collection_timestamp"
)

// playColumns is the fixed schema of the raw play-history table. The
// timestamp-shaped fields stay VARCHAR: played_at is an opaque
// uniqueness key and played_date/played_hour are prefixes of it.
const playColumns = `{
	track_id: 'VARCHAR',
	name: 'VARCHAR',
	artist: 'VARCHAR',
	played_at: 'VARCHAR',
	album: 'VARCHAR',
	duration_ms: 'BIGINT',
	popularity: 'BIGINT',
	explicit: 'BOOLEAN',
	artist_id: 'VARCHAR',
	album_id: 'VARCHAR',
	release_date: 'VARCHAR',
	total_tracks: 'BIGINT',
	played_date: 'VARCHAR',
	played_hour: 'VARCHAR',
	collection_timestamp: 'VARCHAR'
}`

// Stats reports the row counts of one run.
type Stats struct {
	RowsBefore int64
	RowsAfter  int64
	OutputKey  string
}

// Job loads a cataloged table, deduplicates it and writes the result.
type Job struct {
	catalog   *catalog.Catalog
	store     storage.Store
	bucket    string
	outputKey string
	logger    *zap.Logger
}

// NewJob creates a dedup job writing to bucket/outputKey. The output key
// is fixed: rerunning with the same input overwrites the same object,
// which makes the output path the idempotence boundary.
func NewJob(cat *catalog.Catalog, store storage.Store, bucket, outputKey string, logger *zap.Logger) *Job {
	return &Job{
		catalog:   cat,
		store:     store,
		bucket:    bucket,
		outputKey: outputKey,
		logger:    logger,
	}
}

// Run executes the job for one database/table pair. Catalog misses and
// load failures abort the run with the error surfaced as-is.
func (j *Job) Run(ctx context.Context, database, table string) (*Stats, error) {
	entry, err := j.catalog.Lookup(database, table)
	if err != nil {
		return nil, err
	}
	if entry.Format != "jsonl" {
		return nil, fmt.Errorf("table %s.%s: unsupported source format %q", database, table, entry.Format)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	defer db.Close()

	loadQuery := fmt.Sprintf(
		`CREATE TABLE plays AS SELECT * FROM read_json(%s, format='newline_delimited', columns=%s)`,
		quoteLiteral(entry.Location), playColumns)
	if _, err := db.ExecContext(ctx, loadQuery); err != nil {
		return nil, fmt.Errorf("loading table %s.%s from %s: %w", database, table, entry.Location, err)
	}

	stats := &Stats{OutputKey: j.outputKey}
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM plays`).Scan(&stats.RowsBefore); err != nil {
		return nil, fmt.Errorf("counting source rows: %w", err)
	}
	j.logger.Info("table loaded", zap.String("table", database+"."+table), zap.Int64("rows", stats.RowsBefore))

	dedupQuery := fmt.Sprintf(`
		CREATE TABLE plays_clean AS
		SELECT * EXCLUDE (rn) FROM (
			SELECT *, row_number() OVER (PARTITION BY %s ORDER BY %s) AS rn
			FROM plays
		) WHERE rn = 1`, dedupColumn, tieBreakColumn)
	if _, err := db.ExecContext(ctx, dedupQuery); err != nil {
		return nil, fmt.Errorf("deduplicating on %s: %w", dedupColumn, err)
	}

	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM plays_clean`).Scan(&stats.RowsAfter); err != nil {
		return nil, fmt.Errorf("counting deduplicated rows: %w", err)
	}
	j.logger.Info("duplicates removed",
		zap.Int64("rows_before", stats.RowsBefore),
		zap.Int64("rows_after", stats.RowsAfter),
		zap.Int64("removed", stats.RowsBefore-stats.RowsAfter))

	data, err := exportParquet(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := j.store.Put(ctx, j.bucket, j.outputKey, data); err != nil {
		return nil, fmt.Errorf("writing columnar output: %w", err)
	}
	j.logger.Info("columnar copy written",
		zap.String("bucket", j.bucket),
		zap.String("key", j.outputKey),
		zap.Int("bytes", len(data)))

	return stats, nil
}

// exportParquet copies the deduplicated table to a temporary Parquet
// file and returns its contents.
func exportParquet(ctx context.Context, db *sql.DB) ([]byte, error) {
	dir, err := os.MkdirTemp("", "playlake-dedup-*")
	if err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "historial.parquet")
	exportQuery := `COPY plays_clean TO ? (FORMAT PARQUET, COMPRESSION 'ZSTD')`
	if _, err := db.ExecContext(ctx, exportQuery, path); err != nil {
		return nil, fmt.Errorf("exporting parquet: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exported parquet: %w", err)
	}
	return data, nil
}

// quoteLiteral renders a string as a single-quoted SQL literal. DuckDB
// does not accept parameters inside read_json_auto in DDL.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

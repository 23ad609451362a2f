package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"playlake/internal/catalog"
	"playlake/internal/storage"
)

// jsonlRow renders one raw play record line with the fields the dedup
// job cares about.
func jsonlRow(trackID, playedAt, collectedAt string) string {
	return fmt.Sprintf(
		`{"track_id":%q,"name":"Track","artist":"Artist","played_at":%q,"album":"Album","duration_ms":1000,"popularity":50,"explicit":false,"artist_id":"a","album_id":"al","release_date":"2020-01-01","total_tracks":10,"played_date":%q,"played_hour":%q,"collection_timestamp":%q}`,
		trackID, playedAt, playedAt[:10], playedAt[11:13], collectedAt)
}

// writeRawBatch writes rows as one JSONL file under a date partition.
func writeRawBatch(t *testing.T, root, day, name string, rows []string) {
	t.Helper()
	dir := filepath.Join(root, "year=2026", "month=08", "day="+day)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := strings.Join(rows, "\n")
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing batch: %v", err)
	}
}

func testCatalog(location string) *catalog.Catalog {
	return &catalog.Catalog{Tables: []catalog.Table{{
		Database: "spotify_analytics",
		Name:     "historial",
		Location: location,
		Format:   "jsonl",
	}}}
}

func TestRun_RemovesDuplicates(t *testing.T) {
	raw := t.TempDir()
	// t1 appears in two batches (the same play collected twice); t2 once.
	writeRawBatch(t, raw, "22", "historial_20260822_120000.jsonl", []string{
		jsonlRow("track-1", "2026-08-22T10:00:00Z", "2026-08-22T12:00:00Z"),
		jsonlRow("track-2", "2026-08-22T11:00:00Z", "2026-08-22T12:00:00Z"),
	})
	writeRawBatch(t, raw, "23", "historial_20260823_120000.jsonl", []string{
		jsonlRow("track-1", "2026-08-22T10:00:00Z", "2026-08-23T12:00:00Z"),
	})

	store := storage.NewFSStore(t.TempDir())
	glob := filepath.Join(raw, "year=*", "month=*", "day=*", "*.jsonl")
	job := NewJob(testCatalog(glob), store, "spotify-historial", "historial-limpio/historial.parquet", zap.NewNop())

	stats, err := job.Run(context.Background(), "spotify_analytics", "historial")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.RowsBefore != 3 {
		t.Errorf("RowsBefore = %d, want 3", stats.RowsBefore)
	}
	if stats.RowsAfter != 2 {
		t.Errorf("RowsAfter = %d, want 2", stats.RowsAfter)
	}

	outputPath := store.ObjectPath("spotify-historial", "historial-limpio/historial.parquet")
	rows := queryParquet(t, outputPath)
	if len(rows) != 2 {
		t.Fatalf("output rows = %d, want 2", len(rows))
	}
	// The earliest collection_timestamp survives the played_at collision.
	if got := rows["2026-08-22T10:00:00Z"]; got != "2026-08-22T12:00:00Z" {
		t.Errorf("survivor collection_timestamp = %q, want earliest", got)
	}
}

func TestRun_IdempotentOnCleanInput(t *testing.T) {
	raw := t.TempDir()
	writeRawBatch(t, raw, "23", "historial.jsonl", []string{
		jsonlRow("track-1", "2026-08-23T10:00:00Z", "2026-08-23T12:00:00Z"),
		jsonlRow("track-2", "2026-08-23T10:03:00Z", "2026-08-23T12:00:00Z"),
		jsonlRow("track-3", "2026-08-23T10:07:00Z", "2026-08-23T12:00:00Z"),
	})

	store := storage.NewFSStore(t.TempDir())
	glob := filepath.Join(raw, "year=*", "month=*", "day=*", "*.jsonl")
	job := NewJob(testCatalog(glob), store, "bucket", "historial-limpio/historial.parquet", zap.NewNop())

	// Two runs against the same input: identical counts, same output key
	// overwritten in place.
	for run := 0; run < 2; run++ {
		stats, err := job.Run(context.Background(), "spotify_analytics", "historial")
		if err != nil {
			t.Fatalf("Run() #%d error = %v", run+1, err)
		}
		if stats.RowsBefore != 3 || stats.RowsAfter != 3 {
			t.Errorf("run #%d rows = %d/%d, want 3/3", run+1, stats.RowsBefore, stats.RowsAfter)
		}
	}
}

func TestRun_TableNotFound(t *testing.T) {
	store := storage.NewFSStore(t.TempDir())
	job := NewJob(testCatalog("unused"), store, "bucket", "out.parquet", zap.NewNop())

	_, err := job.Run(context.Background(), "spotify_analytics", "missing_table")
	if !errors.Is(err, catalog.ErrTableNotFound) {
		t.Errorf("Run() error = %v, want ErrTableNotFound surfaced verbatim", err)
	}
}

func TestRun_UnsupportedFormat(t *testing.T) {
	cat := &catalog.Catalog{Tables: []catalog.Table{{
		Database: "db", Name: "t", Location: "somewhere", Format: "csv",
	}}}
	job := NewJob(cat, storage.NewFSStore(t.TempDir()), "bucket", "out.parquet", zap.NewNop())

	if _, err := job.Run(context.Background(), "db", "t"); err == nil {
		t.Error("Run() error = nil, want unsupported-format error")
	}
}

// queryParquet reads the exported file back and maps played_at to
// collection_timestamp.
func queryParquet(t *testing.T, path string) map[string]string {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("opening duckdb: %v", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT played_at, collection_timestamp FROM read_parquet(%s)`, quoteLiteral(path))
	rows, err := db.Query(query)
	if err != nil {
		t.Fatalf("reading parquet back: %v", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var playedAt, collectedAt string
		if err := rows.Scan(&playedAt, &collectedAt); err != nil {
			t.Fatalf("scanning row: %v", err)
		}
		result[playedAt] = collectedAt
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterating rows: %v", err)
	}
	return result
}

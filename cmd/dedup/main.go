// Command dedup runs the deduplication batch job: it loads the raw
// play-history table through the catalog, drops duplicate plays and
// writes the result as a Parquet object to a fixed key.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"playlake/internal/catalog"
	"playlake/internal/config"
	"playlake/internal/dedup"
	"playlake/internal/logging"
	"playlake/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadBatch()
	if err != nil {
		return err
	}

	database := flag.String("database", cfg.DedupDatabase, "catalog database of the source table")
	table := flag.String("table", cfg.DedupTable, "catalog name of the source table")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logging.ForJob(logger, "dedup")

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	store, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	job := dedup.NewJob(cat, store, cfg.Bucket, cfg.DedupOutputKey, log)

	stats, err := job.Run(context.Background(), *database, *table)
	if err != nil {
		return err
	}

	log.Info("job complete",
		zap.Int64("rows_before", stats.RowsBefore),
		zap.Int64("rows_after", stats.RowsAfter),
		zap.String("output_key", stats.OutputKey))
	return nil
}

// newObjectStore picks the S3-compatible store when an endpoint is
// configured and the filesystem store otherwise.
func newObjectStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageEndpoint == "" {
		return storage.NewFSStore(cfg.StorageRoot), nil
	}
	return storage.NewS3Store(storage.S3Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		UseSSL:    cfg.StorageUseSSL,
	})
}

// Command collector runs one collection: it fetches the recently played
// tracks from Spotify and writes the batch to object storage in two
// formats. Scheduling is the platform's job (cron, a systemd timer, or
// a function trigger); the process runs to completion and exits.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"playlake/internal/auth"
	"playlake/internal/collector"
	"playlake/internal/config"
	"playlake/internal/logging"
	"playlake/internal/secrets"
	"playlake/internal/spotify"
	"playlake/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Configuration is checked before anything touches the network.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logging.ForJob(logger, "collector")

	ctx := context.Background()

	cache := auth.NewTokenCache(cfg.TokenCachePath)
	copied, err := cache.EnsureSeeded(cfg.SeedCachePath)
	if err != nil {
		return fmt.Errorf("seeding token cache: %w", err)
	}
	if copied {
		log.Info("token cache seeded from deployment package",
			zap.String("seed", cfg.SeedCachePath),
			zap.String("cache", cfg.TokenCachePath))
	}

	creds, err := secrets.LoadCredentials(ctx, secrets.DirStore{}, cfg.SecretsPath)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	httpClient, persist, err := auth.New(creds, cache).Client(ctx)
	if err != nil {
		return err
	}

	store, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	runner := collector.NewRunner(collector.Options{
		Source:          spotify.New(httpClient),
		Store:           store,
		Bucket:          cfg.Bucket,
		RawPrefix:       cfg.RawPrefix,
		ProcessedPrefix: cfg.ProcessedPrefix,
		Logger:          log,
	})

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	// The auth transport may have refreshed the token during the run;
	// write it back so the next invocation skips the refresh.
	if err := persist(); err != nil {
		log.Warn("persisting refreshed token failed", zap.Error(err))
	}

	log.Info("run complete",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("records", result.Records))
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

// Package config loads pipeline configuration from the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Defaults for everything that is not a required value.
const (
	defaultSeedCachePath   = "token.json"
	defaultRawPrefix       = "raw/historial"
	defaultProcessedPrefix = "processed/historial"
	defaultCatalogPath     = "catalog.toml"
	defaultDedupDatabase   = "spotify_analytics"
	defaultDedupTable      = "historial"
	defaultDedupOutputKey  = "historial-limpio/historial.parquet"
	defaultStorageRoot     = "data"
)

// Sentinel errors for the two required values. Either missing aborts a
// run before any network call is made.
var (
	ErrMissingSecretsPath = errors.New("missing SECRETS_PATH environment variable")
	ErrMissingBucket      = errors.New("missing STORAGE_BUCKET environment variable")
)

// Config holds the settings shared by the collector and dedup jobs.
type Config struct {
	// SecretsPath is the hierarchical path of the Spotify credentials
	// in the secret store. Required.
	SecretsPath string
	// Bucket is the object-storage bucket both jobs write to. Required.
	Bucket string

	// TokenCachePath is the writable location of the OAuth token cache.
	TokenCachePath string
	// SeedCachePath is the read-only cache shipped with the deployment,
	// copied into TokenCachePath once per environment lifetime.
	SeedCachePath string

	// RawPrefix and ProcessedPrefix are the key prefixes for the two
	// collector output formats.
	RawPrefix       string
	ProcessedPrefix string

	// Object-store connection. An empty Endpoint selects the
	// filesystem-backed store rooted at StorageRoot.
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool
	StorageRoot      string

	// Dedup job settings.
	CatalogPath    string
	DedupDatabase  string
	DedupTable     string
	DedupOutputKey string

	LogLevel string
}

// Load reads the collector configuration from the environment. Both
// required values must be present; the check happens before any
// external call is made. A .env file in the working directory is
// honored if present (missing is fine).
func Load() (*Config, error) {
	cfg := fill()
	if cfg.SecretsPath == "" {
		return nil, ErrMissingSecretsPath
	}
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	return cfg, nil
}

// LoadBatch reads the dedup-job configuration. The batch job touches no
// secrets, so only the bucket is required.
func LoadBatch() (*Config, error) {
	cfg := fill()
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	return cfg, nil
}

func fill() *Config {
	loadDotEnv()

	return &Config{
		SecretsPath:      os.Getenv("SECRETS_PATH"),
		Bucket:           os.Getenv("STORAGE_BUCKET"),
		TokenCachePath:   getEnv("TOKEN_CACHE_PATH", defaultTokenCachePath()),
		SeedCachePath:    getEnv("SEED_CACHE_PATH", defaultSeedCachePath),
		RawPrefix:        getEnv("RAW_PREFIX", defaultRawPrefix),
		ProcessedPrefix:  getEnv("PROCESSED_PREFIX", defaultProcessedPrefix),
		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageUseSSL:    os.Getenv("STORAGE_USE_SSL") == "true",
		StorageRoot:      getEnv("STORAGE_ROOT", defaultStorageRoot),
		CatalogPath:      getEnv("CATALOG_PATH", defaultCatalogPath),
		DedupDatabase:    getEnv("DEDUP_DATABASE", defaultDedupDatabase),
		DedupTable:       getEnv("DEDUP_TABLE", defaultDedupTable),
		DedupOutputKey:   getEnv("DEDUP_OUTPUT_KEY", defaultDedupOutputKey),
		LogLevel:         os.Getenv("LOG_LEVEL"),
	}
}

// loadDotEnv loads a .env file when one exists. Absence is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultTokenCachePath puts the writable cache under the system temp
// directory, the one location the collector's execution environment
// guarantees to be writable.
func defaultTokenCachePath() string {
	return filepath.Join(os.TempDir(), "playlake", "token.json")
}

package config

import (
	"errors"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SECRETS_PATH", "STORAGE_BUCKET", "TOKEN_CACHE_PATH", "SEED_CACHE_PATH",
		"RAW_PREFIX", "PROCESSED_PREFIX", "STORAGE_ENDPOINT", "STORAGE_ROOT",
		"CATALOG_PATH", "DEDUP_DATABASE", "DEDUP_TABLE", "DEDUP_OUTPUT_KEY", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_RequiredValues(t *testing.T) {
	tests := []struct {
		name        string
		secretsPath string
		bucket      string
		wantErr     error
	}{
		{"both missing", "", "", ErrMissingSecretsPath},
		{"bucket missing", "/spotify/prod", "", ErrMissingBucket},
		{"secrets path missing", "", "spotify-historial", ErrMissingSecretsPath},
		{"both present", "/spotify/prod", "spotify-historial", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SECRETS_PATH", tt.secretsPath)
			t.Setenv("STORAGE_BUCKET", tt.bucket)

			cfg, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && cfg.Bucket != tt.bucket {
				t.Errorf("Bucket = %q, want %q", cfg.Bucket, tt.bucket)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRETS_PATH", "/spotify/prod")
	t.Setenv("STORAGE_BUCKET", "spotify-historial")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RawPrefix != "raw/historial" {
		t.Errorf("RawPrefix = %q", cfg.RawPrefix)
	}
	if cfg.ProcessedPrefix != "processed/historial" {
		t.Errorf("ProcessedPrefix = %q", cfg.ProcessedPrefix)
	}
	if cfg.SeedCachePath != "token.json" {
		t.Errorf("SeedCachePath = %q", cfg.SeedCachePath)
	}
	if cfg.TokenCachePath == "" {
		t.Error("TokenCachePath is empty")
	}
	if cfg.DedupDatabase != "spotify_analytics" || cfg.DedupTable != "historial" {
		t.Errorf("dedup defaults = %q.%q", cfg.DedupDatabase, cfg.DedupTable)
	}
	if cfg.DedupOutputKey != "historial-limpio/historial.parquet" {
		t.Errorf("DedupOutputKey = %q", cfg.DedupOutputKey)
	}
}

func TestLoadBatch_DoesNotRequireSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BUCKET", "spotify-historial")

	cfg, err := LoadBatch()
	if err != nil {
		t.Fatalf("LoadBatch() error = %v", err)
	}
	if cfg.SecretsPath != "" {
		t.Errorf("SecretsPath = %q, want empty", cfg.SecretsPath)
	}
}

func TestLoadBatch_RequiresBucket(t *testing.T) {
	clearEnv(t)

	if _, err := LoadBatch(); !errors.Is(err, ErrMissingBucket) {
		t.Errorf("LoadBatch() error = %v, want ErrMissingBucket", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRETS_PATH", "/spotify/prod")
	t.Setenv("STORAGE_BUCKET", "bucket")
	t.Setenv("RAW_PREFIX", "landing/plays")
	t.Setenv("STORAGE_ENDPOINT", "minio.local:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RawPrefix != "landing/plays" {
		t.Errorf("RawPrefix = %q", cfg.RawPrefix)
	}
	if cfg.StorageEndpoint != "minio.local:9000" {
		t.Errorf("StorageEndpoint = %q", cfg.StorageEndpoint)
	}
}

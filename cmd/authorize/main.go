// Command authorize performs the one-time interactive OAuth flow and
// writes the resulting token to the seed cache location. The seed file
// is then shipped with the collector's deployment package, where each
// execution environment copies it into its writable cache on first run.
package main

import (
	"context"
	"fmt"
	"os"

	"playlake/internal/auth"
	"playlake/internal/config"
	"playlake/internal/secrets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	creds, err := secrets.LoadCredentials(ctx, secrets.DirStore{}, cfg.SecretsPath)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	seed := auth.NewTokenCache(cfg.SeedCachePath)
	if err := auth.New(creds, seed).Authorize(ctx); err != nil {
		return err
	}

	fmt.Printf("Token saved to %s. Ship this file with the collector deployment.\n", seed.Path())
	return nil
}

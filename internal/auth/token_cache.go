// Package auth manages Spotify OAuth2 credentials: the persistent token
// cache, the seed handoff between execution environments, and the
// refresh-token client used by the collector.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenCache handles persistent storage of the OAuth token. There is at
// most one valid cache per account; writes are last-writer-wins.
type TokenCache struct {
	path string
}

// NewTokenCache creates a TokenCache at the given path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// Path returns the file path where the token is stored.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads the cached token from disk.
// Returns (nil, nil) if the token file does not exist.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}

	return &token, nil
}

// Save writes the token to disk, creating the parent directory if needed.
func (c *TokenCache) Save(token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// EnsureSeeded copies the read-only seed cache into the writable cache
// location when no writable cache exists yet. A writable cache from a
// prior invocation in the same environment is never overwritten, so the
// copy happens at most once per environment lifetime. A missing seed is
// not an error; the run fails later when no token can be loaded.
// Reports whether a copy took place.
func (c *TokenCache) EnsureSeeded(seedPath string) (bool, error) {
	if _, err := os.Stat(c.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking writable cache: %w", err)
	}

	seed, err := os.Open(seedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("opening seed cache: %w", err)
	}
	defer seed.Close()

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return false, fmt.Errorf("creating cache directory: %w", err)
	}

	dst, err := os.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return false, fmt.Errorf("creating writable cache: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, seed); err != nil {
		return false, fmt.Errorf("copying seed cache: %w", err)
	}

	return true, nil
}

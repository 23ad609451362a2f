// Package secrets resolves the Spotify API credentials from a secret
// store. The store is addressed by a hierarchical path and yields a flat
// set of named values.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Keys every collector run requires.
const (
	KeyClientID     = "client-id"
	KeyClientSecret = "client-secret"
	KeyRedirectURI  = "redirect-uri"
)

var requiredKeys = []string{KeyClientID, KeyClientSecret, KeyRedirectURI}

// ErrPathNotFound is returned when the secret path does not exist.
var ErrPathNotFound = errors.New("secret path not found")

// MissingKeysError reports which required secrets were absent under the
// requested path.
type MissingKeysError struct {
	Path string
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing secrets under %s: %s", e.Path, strings.Join(e.Keys, ", "))
}

// Credentials is the set of values needed to authenticate with Spotify.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Store yields the named secret values stored under a hierarchical path.
type Store interface {
	GetByPath(ctx context.Context, path string) (map[string]string, error)
}

// DirStore reads secrets from a directory: the path is a directory and
// each secret is a file named after its key. Values are trimmed of
// trailing whitespace. Decryption at rest is the filesystem's problem.
type DirStore struct{}

// GetByPath reads every regular file directly under path.
func (DirStore) GetByPath(_ context.Context, path string) (map[string]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("reading secret path %s: %w", path, err)
	}

	values := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading secret %s: %w", entry.Name(), err)
		}
		values[entry.Name()] = strings.TrimRight(string(data), "\r\n")
	}

	return values, nil
}

// LoadCredentials fetches the values under path and validates that all
// required keys are present, reporting every missing key at once.
func LoadCredentials(ctx context.Context, store Store, path string) (*Credentials, error) {
	values, err := store.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range requiredKeys {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingKeysError{Path: path, Keys: missing}
	}

	return &Credentials{
		ClientID:     values[KeyClientID],
		ClientSecret: values[KeyClientSecret],
		RedirectURI:  values[KeyRedirectURI],
	}, nil
}

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	return path
}

const validCatalog = `
[[table]]
database = "spotify_analytics"
name = "historial"
location = "data/spotify-historial/raw/historial/year=*/month=*/day=*/*.jsonl"
format = "jsonl"

[[table]]
database = "spotify_analytics"
name = "historial_limpio"
location = "data/spotify-historial/historial-limpio/*.parquet"
format = "parquet"
`

func TestLoadAndLookup(t *testing.T) {
	cat, err := Load(writeCatalog(t, validCatalog))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cat.Tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(cat.Tables))
	}

	table, err := cat.Lookup("spotify_analytics", "historial")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if table.Format != "jsonl" {
		t.Errorf("Format = %q, want jsonl", table.Format)
	}
	if table.Location == "" {
		t.Error("Location is empty")
	}
}

func TestLookup_NotFound(t *testing.T) {
	cat, err := Load(writeCatalog(t, validCatalog))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		database, name string
	}{
		{"spotify_analytics", "missing"},
		{"other_db", "historial"},
	}

	for _, tt := range tests {
		_, err := cat.Lookup(tt.database, tt.name)
		if !errors.Is(err, ErrTableNotFound) {
			t.Errorf("Lookup(%s, %s) error = %v, want ErrTableNotFound", tt.database, tt.name, err)
		}
	}
}

func TestLoad_IncompleteEntry(t *testing.T) {
	path := writeCatalog(t, `
[[table]]
database = "spotify_analytics"
name = "historial"
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want error for entry without location")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}

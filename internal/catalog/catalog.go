// Package catalog resolves {database, table} names to the storage
// location and format of the underlying data, from a TOML definition
// file maintained next to the pipeline.
package catalog

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// ErrTableNotFound is returned when the catalog has no entry for the
// requested database/table pair. Dedup runs surface it verbatim.
var ErrTableNotFound = errors.New("table not found in catalog")

// Table is one catalog entry.
type Table struct {
	Database string `toml:"database"`
	Name     string `toml:"name"`
	// Location is a path or glob the table's files live under, e.g.
	// data/spotify-historial/raw/historial/year=*/month=*/day=*/*.jsonl
	Location string `toml:"location"`
	// Format of the files; currently only "jsonl".
	Format string `toml:"format"`
}

// Catalog is the set of registered tables.
type Catalog struct {
	Tables []Table `toml:"table"`
}

// Load parses the catalog file.
func Load(path string) (*Catalog, error) {
	var cat Catalog
	if _, err := toml.DecodeFile(path, &cat); err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}

	for i, table := range cat.Tables {
		if table.Database == "" || table.Name == "" || table.Location == "" {
			return nil, fmt.Errorf("catalog entry %d: database, name and location are required", i)
		}
	}

	return &cat, nil
}

// Lookup finds a table by database and name.
func (c *Catalog) Lookup(database, name string) (*Table, error) {
	for i := range c.Tables {
		table := &c.Tables[i]
		if table.Database == database && table.Name == name {
			return table, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, database, name)
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a filesystem-backed object store: a bucket is a directory
// under the root and a key is a relative file path. It serves local runs
// and tests; the write semantics match the S3 store (last writer wins).
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir}
}

// Put writes data to root/bucket/key, creating parent directories.
func (s *FSStore) Put(_ context.Context, bucket, key string, data []byte) error {
	path := filepath.Join(s.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ObjectPath returns the filesystem path an object is stored at.
func (s *FSStore) ObjectPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, filepath.FromSlash(key))
}

// contentTypeFor maps the output formats to their MIME types.
func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".jsonl"):
		return "application/x-ndjson"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".parquet"):
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}

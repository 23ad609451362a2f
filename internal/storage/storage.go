// Package storage provides the object-store write primitive both jobs
// persist through. Objects are addressed by bucket and key; writes are
// plain overwrites with no versioning.
package storage

import "context"

// Store writes whole objects to a bucket.
type Store interface {
	// Put stores data under bucket/key, overwriting any existing object.
	Put(ctx context.Context, bucket, key string, data []byte) error
}

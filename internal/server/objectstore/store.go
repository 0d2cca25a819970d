// Package objectstore wraps the S3-compatible object store behind a small
// gateway interface: presigned client-direct transfers plus the few direct
// calls the server makes itself (delete, existence check).
package objectstore

import (
	"context"
	"time"
)

// ObjectStore is the gateway consumed by the entry service. The bytes under
// a storage key are owned by this store; entry metadata only holds weak
// references to them.
type ObjectStore interface {
	// PresignPut returns a time-limited URL granting a single PUT of the
	// given key, bound to the content type the URL was signed with.
	PresignPut(ctx context.Context, key string, contentType string, expires time.Duration) (string, error)

	// PresignGet returns a time-limited URL granting a single GET of the key.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)

	// Delete removes the object at key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}

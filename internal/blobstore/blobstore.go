// Package blobstore defines the object-storage contract used for photo bytes.
// Keys are opaque storage paths; callers decide their structure.
package blobstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultSignedURLTTL is how long a signed read URL stays valid unless the
// caller asks for something else.
const DefaultSignedURLTTL = 10 * time.Minute

var (
	// ErrUnavailable means the storage backend rejected or failed the
	// transfer. Callers may retry; this package never does.
	ErrUnavailable = errors.New("object storage unavailable")

	// ErrKeyNotFound means no object exists under the requested key.
	ErrKeyNotFound = errors.New("object not found")
)

type Store interface {
	// Upload stores the stream under key, overwriting any prior object,
	// and returns the object's durable URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)

	// SignedURL returns a URL granting time-bounded read access to the
	// object under key, without exposing storage credentials. It fails
	// with ErrKeyNotFound if the object does not exist.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes the object under key. It fails with ErrKeyNotFound
	// if the object does not exist.
	Delete(ctx context.Context, key string) error
}

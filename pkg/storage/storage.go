// Package storage is the byte sink for uploaded media. Backends report a
// missing object with an error wrapping fs.ErrNotExist.
package storage

import (
	"context"
	"io"
)

// Storage is implemented by every upload backend.
type Storage interface {
	// PutObject streams data under key. A failed write leaves no object behind.
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject returns a reader the caller must close.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes key. Deleting an absent object is not an error.
	DeleteObject(ctx context.Context, key string) error

	ObjectExists(ctx context.Context, key string) (bool, error)

	// Ping checks that the backend is reachable and writable.
	Ping(ctx context.Context) error

	// Type returns the backend identifier ("local" or "s3").
	Type() string
}

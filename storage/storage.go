package storage

import (
	"context"
	"io"
)

// Storage defines the operations needed to stage uploads.
type Storage interface {
	// Upload writes data from reader to path and returns the bytes written.
	// Writes larger than the configured maximum fail with INVALID_INPUT.
	Upload(ctx context.Context, path string, reader io.Reader) (int64, error)

	// Download returns a reader for the object at path.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Returns nil if it does not exist.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an object exists at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// LocalPather is implemented by backends whose objects are plain files, so
// external tools can read them without a copy.
type LocalPather interface {
	LocalPath(path string) (string, error)
}

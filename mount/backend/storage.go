package backend

import (
	"context"
	"io"
)

// ContentBackend persists the bytes of every file version.
// Keys are immutable: a version is written once and read or deleted afterwards.
type ContentBackend interface {
	Backend

	// WriteContent stores everything read from r under key and returns the number of bytes.
	WriteContent(ctx context.Context, key ContentKey, r io.Reader) (int64, error)

	// ReadContent opens the content stored under key.
	// The caller must close the returned reader.
	ReadContent(ctx context.Context, key ContentKey) (io.ReadCloser, error)

	// DeleteContent removes the content stored under key.
	// Deleting a missing key is not an error.
	DeleteContent(ctx context.Context, key ContentKey) error
}

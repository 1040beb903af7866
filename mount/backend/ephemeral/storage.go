package ephemeral

import (
	"bytes"
	"context"
	"io"

	"github.com/mwantia/tenantvfs/mount/backend"
)

func (eb *EphemeralBackend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	// Read outside of the lock, the reader may block
	buffer, err := backend.ReadLimited(eb.Name(), r, eb.maxObjectSize)
	if err != nil {
		return 0, err
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.writeUnsafe(key, buffer)
	return int64(len(buffer)), nil
}

func (eb *EphemeralBackend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buffer, exists := eb.readUnsafe(key)
	if !exists {
		return nil, backend.ContentNotFound(key)
	}

	return io.NopCloser(bytes.NewReader(buffer)), nil
}

func (eb *EphemeralBackend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.deleteUnsafe(key)
	return nil
}

package direct

import (
	"context"
	"io"
	"os"

	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

func (db *DirectBackend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	name := key.Path()
	if err := db.fs.MkdirAll(db.fs.Join(key.Namespace, key.FileID), 0o755); err != nil {
		return 0, errors.Backend(err, db.Name(), "unable to create directory for '%s'", key)
	}

	file, err := db.fs.Create(name)
	if err != nil {
		return 0, errors.Backend(err, db.Name(), "unable to create '%s'", key)
	}

	limit := db.GetCapabilities().MaxObjectSize
	written, err := io.Copy(file, io.LimitReader(r, limit+1))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > limit {
		err = errors.Backend(nil, db.Name(), "content exceeds maximum object size of %d bytes", limit)
	}
	if err != nil {
		_ = db.fs.Remove(name)
		return 0, errors.Backend(err, db.Name(), "unable to write '%s'", key)
	}

	return written, nil
}

func (db *DirectBackend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	file, err := db.fs.Open(key.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, backend.ContentNotFound(key)
		}
		return nil, errors.Backend(err, db.Name(), "unable to open '%s'", key)
	}

	return file, nil
}

func (db *DirectBackend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.fs.Remove(key.Path()); err != nil && !os.IsNotExist(err) {
		return errors.Backend(err, db.Name(), "unable to delete '%s'", key)
	}
	// Drop the per-file directory once its last version is gone
	_ = db.fs.Remove(db.fs.Join(key.Namespace, key.FileID))
	return nil
}

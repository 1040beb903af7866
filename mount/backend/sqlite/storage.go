package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

func (sb *SQLiteBackend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	buffer, err := backend.ReadLimited(sb.Name(), r, 0)
	if err != nil {
		return 0, err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, err = sb.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO vfs_content (namespace, file_id, version_id, content, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key.Namespace, key.FileID, key.VersionID, buffer, len(buffer), time.Now().Unix())
	if err != nil {
		return 0, errors.Backend(err, sb.Name(), "unable to write '%s'", key)
	}

	return int64(len(buffer)), nil
}

func (sb *SQLiteBackend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	var content []byte
	err := sb.db.QueryRowContext(ctx, `
		SELECT content FROM vfs_content WHERE namespace = ? AND file_id = ? AND version_id = ?
	`, key.Namespace, key.FileID, key.VersionID).Scan(&content)

	if err == sql.ErrNoRows {
		return nil, backend.ContentNotFound(key)
	}
	if err != nil {
		return nil, errors.Backend(err, sb.Name(), "unable to read '%s'", key)
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (sb *SQLiteBackend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, err := sb.db.ExecContext(ctx, `
		DELETE FROM vfs_content WHERE namespace = ? AND file_id = ? AND version_id = ?
	`, key.Namespace, key.FileID, key.VersionID)
	if err != nil {
		return errors.Backend(err, sb.Name(), "unable to delete '%s'", key)
	}
	return nil
}

package postgres

import (
	"bytes"
	"context"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

func (pb *PostgresBackend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	buffer, err := backend.ReadLimited(pb.Name(), r, 0)
	if err != nil {
		return 0, err
	}

	pb.mu.RLock()
	defer pb.mu.RUnlock()

	_, err = pb.pool.Exec(ctx, `
		INSERT INTO vfs_content (namespace, file_id, version_id, content, size)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace, file_id, version_id)
		DO UPDATE SET content = EXCLUDED.content, size = EXCLUDED.size, created_at = NOW()
	`, key.Namespace, key.FileID, key.VersionID, buffer, len(buffer))
	if err != nil {
		return 0, errors.Backend(err, pb.Name(), "unable to write '%s'", key)
	}

	return int64(len(buffer)), nil
}

func (pb *PostgresBackend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	var content []byte
	err := pb.pool.QueryRow(ctx, `
		SELECT content FROM vfs_content WHERE namespace = $1 AND file_id = $2 AND version_id = $3
	`, key.Namespace, key.FileID, key.VersionID).Scan(&content)

	if err == pgx.ErrNoRows {
		return nil, backend.ContentNotFound(key)
	}
	if err != nil {
		return nil, errors.Backend(err, pb.Name(), "unable to read '%s'", key)
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (pb *PostgresBackend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	_, err := pb.pool.Exec(ctx, `
		DELETE FROM vfs_content WHERE namespace = $1 AND file_id = $2 AND version_id = $3
	`, key.Namespace, key.FileID, key.VersionID)
	if err != nil {
		return errors.Backend(err, pb.Name(), "unable to delete '%s'", key)
	}
	return nil
}

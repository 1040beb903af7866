package s3

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

func (sb *S3Backend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	// Size -1 lets minio switch to a multipart upload for unknown lengths
	info, err := sb.client.PutObject(ctx, sb.config.Bucket, sb.objectName(key), r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return 0, errors.Backend(err, sb.Name(), "unable to write '%s'", key)
	}

	return info.Size, nil
}

func (sb *S3Backend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	name := sb.objectName(key)
	// GetObject is lazy and only fails on the first read, so stat first
	if _, err := sb.client.StatObject(ctx, sb.config.Bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil, backend.ContentNotFound(key)
		}
		return nil, errors.Backend(err, sb.Name(), "unable to stat '%s'", key)
	}

	object, err := sb.client.GetObject(ctx, sb.config.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Backend(err, sb.Name(), "unable to read '%s'", key)
	}

	return object, nil
}

func (sb *S3Backend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	err := sb.client.RemoveObject(ctx, sb.config.Bucket, sb.objectName(key), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return errors.Backend(err, sb.Name(), "unable to delete '%s'", key)
	}
	return nil
}

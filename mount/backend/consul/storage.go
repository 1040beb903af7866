package consul

import (
	"bytes"
	"context"
	"io"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

func (cb *ConsulBackend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	buffer, err := backend.ReadLimited(cb.Name(), r, maxObjectSize)
	if err != nil {
		return 0, err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	pair := &api.KVPair{
		Key:   cb.buildKey(key),
		Value: buffer,
	}
	if _, err := cb.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return 0, errors.Backend(err, cb.Name(), "unable to write '%s'", key)
	}

	return int64(len(buffer)), nil
}

func (cb *ConsulBackend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	pair, _, err := cb.kv.Get(cb.buildKey(key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.Backend(err, cb.Name(), "unable to read '%s'", key)
	}
	if pair == nil {
		return nil, backend.ContentNotFound(key)
	}

	return io.NopCloser(bytes.NewReader(pair.Value)), nil
}

func (cb *ConsulBackend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if _, err := cb.kv.Delete(cb.buildKey(key), (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return errors.Backend(err, cb.Name(), "unable to delete '%s'", key)
	}
	return nil
}

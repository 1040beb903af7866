package badger

import (
	"bytes"
	"context"
	"io"

	"github.com/dgraph-io/badger/v4"
	"github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount/backend"
)

func (bb *BadgerBackend) WriteContent(ctx context.Context, key backend.ContentKey, r io.Reader) (int64, error) {
	buffer, err := backend.ReadLimited(bb.Name(), r, 0)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	bb.mu.RLock()
	defer bb.mu.RUnlock()

	err = bb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(contentKey(key), buffer)
	})
	if err != nil {
		return 0, errors.Backend(err, bb.Name(), "unable to write '%s'", key)
	}

	return int64(len(buffer)), nil
}

func (bb *BadgerBackend) ReadContent(ctx context.Context, key backend.ContentKey) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bb.mu.RLock()
	defer bb.mu.RUnlock()

	var content []byte
	err := bb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contentKey(key))
		if err != nil {
			return err
		}

		content, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return nil, backend.ContentNotFound(key)
	}
	if err != nil {
		return nil, errors.Backend(err, bb.Name(), "unable to read '%s'", key)
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (bb *BadgerBackend) DeleteContent(ctx context.Context, key backend.ContentKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bb.mu.RLock()
	defer bb.mu.RUnlock()

	err := bb.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(contentKey(key))
	})
	if err != nil {
		return errors.Backend(err, bb.Name(), "unable to delete '%s'", key)
	}
	return nil
}

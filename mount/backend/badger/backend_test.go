package badger

import (
	"io"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerBackend_RequiresPath(t *testing.T) {
	_, err := NewBadgerBackend(&BadgerBackendConfig{})
	assert.ErrorIs(t, err, data.ErrConflict)
}

func TestBadgerBackend_Persistent(t *testing.T) {
	ctx := t.Context()
	config := &BadgerBackendConfig{Path: t.TempDir()}
	key := backend.ContentKey{Namespace: "tenant", FileID: "file", VersionID: "v1"}

	bb, err := NewBadgerBackend(config)
	require.NoError(t, err)
	require.NoError(t, bb.Open(ctx))
	assert.True(t, bb.GetCapabilities().Contains(backend.CapabilityPersistent))

	_, err = bb.WriteContent(ctx, key, strings.NewReader("kept"))
	require.NoError(t, err)

	err = bb.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("c:tenant:file/v1"))
		return err
	})
	require.NoError(t, err, "content is stored below the content prefix")

	require.NoError(t, bb.Close(ctx))
	assert.NoError(t, bb.Close(ctx), "closing twice is a no-op")
	assert.Error(t, bb.Open(ctx))

	reopened, err := NewBadgerBackend(config)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	r, err := reopened.ReadContent(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(content))
}

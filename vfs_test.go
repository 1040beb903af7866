package vfs_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/mwantia/tenantvfs/log"
	"github.com/mwantia/tenantvfs/mount"
	"github.com/mwantia/tenantvfs/mount/backend"
	"github.com/mwantia/tenantvfs/mount/backend/direct"
	"github.com/mwantia/tenantvfs/mount/backend/ephemeral"
	"github.com/mwantia/tenantvfs/mount/backend/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var developer = &identity.User{ID: "dev", Groups: []string{mount.DefaultRootGroup}}

type TestBackendFactory func(t *testing.T) backend.ContentBackend

func GetTestBackendFactories() map[string]TestBackendFactory {
	return map[string]TestBackendFactory{
		"ephemeral": func(t *testing.T) backend.ContentBackend {
			return ephemeral.NewEphemeralBackend()
		},
		"sqlite": func(t *testing.T) backend.ContentBackend {
			b, err := sqlite.NewSQLiteBackend(":memory:")
			require.NoError(t, err)
			return b
		},
		"direct": func(t *testing.T) backend.ContentBackend {
			b, err := direct.NewDirectBackend(t.TempDir())
			require.NoError(t, err)
			return b
		},
	}
}

func newTestFileSystem(t *testing.T, b backend.ContentBackend, opts ...mount.MountOption) (*vfs.VirtualFileSystem, context.Context) {
	t.Helper()

	ctx := identity.WithUser(t.Context(), developer)
	require.NoError(t, b.Open(ctx))
	t.Cleanup(func() {
		_ = b.Close(context.Background())
	})

	mp, err := mount.NewMountPoint("tenant", b, opts...)
	require.NoError(t, err)

	fs, err := vfs.NewVirtualFileSystem(mp, vfs.WithLogger(log.NewDiscardLogger()))
	require.NoError(t, err)
	return fs, ctx
}

func newEphemeralFileSystem(t *testing.T, opts ...mount.MountOption) (*vfs.VirtualFileSystem, context.Context) {
	t.Helper()
	return newTestFileSystem(t, ephemeral.NewEphemeralBackend(), opts...)
}

func rootID(fs *vfs.VirtualFileSystem) string {
	return fs.MountPoint().Root().ID()
}

func readStream(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer r.Close()

	buffer, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(buffer)
}

func TestVirtualFileSystem_Backends(t *testing.T) {
	for name, factory := range GetTestBackendFactories() {
		t.Run(name, func(t *testing.T) {
			fs, ctx := newTestFileSystem(t, factory(t))

			folder, err := fs.CreateFolder(ctx, rootID(fs), "docs")
			require.NoError(t, err)
			assert.Equal(t, "/docs", folder.Path)

			file, err := fs.CreateFile(ctx, folder.ID, "readme.md", "", strings.NewReader("# hello"))
			require.NoError(t, err)
			assert.Equal(t, data.ContentTypeTextMarkdown, file.MediaType)
			assert.Equal(t, int64(7), file.Length)

			require.NoError(t, fs.UpdateContent(ctx, file.ID, strings.NewReader("# updated"), "", ""))

			stream, err := fs.GetContentByPath(ctx, "/docs/readme.md", "")
			require.NoError(t, err)
			assert.Equal(t, "# updated", readStream(t, stream))

			renamed, err := fs.Rename(ctx, file.ID, "index.md", "", "")
			require.NoError(t, err)
			assert.Equal(t, "/docs/index.md", renamed.Path)

			require.NoError(t, fs.Delete(ctx, folder.ID, ""))
			_, err = fs.GetItem(ctx, file.ID, false, data.AllProperties)
			assert.ErrorIs(t, err, vfs.ErrNotFound)
		})
	}
}

func TestNewVirtualFileSystem(t *testing.T) {
	_, err := vfs.NewVirtualFileSystem(nil)
	assert.ErrorIs(t, err, vfs.ErrConflict)

	mp, err := mount.NewMountPoint("tenant", ephemeral.NewEphemeralBackend())
	require.NoError(t, err)

	_, err = vfs.NewVirtualFileSystem(mp, vfs.WithUploadMemory(0))
	assert.Error(t, err)

	fs, err := vfs.NewVirtualFileSystem(mp, vfs.WithLogger(log.NewDiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, "tenant", fs.Tenant())
	assert.Same(t, mp, fs.MountPoint())
}

func TestVirtualFileSystem_GetInfo(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	info, err := fs.GetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tenant", info.TenantID)
	assert.Equal(t, rootID(fs), info.RootFolderID)
	assert.Equal(t, "/", info.RootFolderPath)
	assert.True(t, info.ACLSupported)
	assert.True(t, info.LockSupported)
	assert.False(t, info.SearchSupported)
	assert.Equal(t, data.AnyPrincipal, info.AnyPrincipal)
	assert.Contains(t, info.Permissions, data.PermissionAll)

	require.NoError(t, fs.MountPoint().Reset(ctx))
	_, err = fs.GetInfo(ctx)
	assert.ErrorIs(t, err, vfs.ErrMountClosed)
}

func TestVirtualFileSystem_GetItemByPath(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	file, err := fs.CreateFile(ctx, rootID(fs), "a/b.txt", "", strings.NewReader("v1"))
	require.NoError(t, err)
	require.NoError(t, fs.UpdateContent(ctx, file.ID, strings.NewReader("v2"), "", ""))

	item, err := fs.GetItemByPath(ctx, "/a/b.txt", "", true, data.AllProperties)
	require.NoError(t, err)
	assert.Equal(t, file.ID, item.ID)
	assert.NotEmpty(t, item.Permissions)

	old, err := fs.GetItemByPath(ctx, "/a/b.txt", file.VersionID, false, data.NoProperties)
	require.NoError(t, err)
	assert.Equal(t, file.VersionID, old.VersionID)

	stream, err := fs.GetContentByPath(ctx, "/a/b.txt", file.VersionID)
	require.NoError(t, err)
	assert.Equal(t, "v1", readStream(t, stream))

	_, err = fs.GetItemByPath(ctx, "/a", "1", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
	_, err = fs.GetContentByPath(ctx, "/a", "1")
	assert.ErrorIs(t, err, vfs.ErrForbidden)

	_, err = fs.GetItemByPath(ctx, "/../a", "", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrInvalidPath)
	_, err = fs.GetItemByPath(ctx, "/missing", "", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrNotFound)
}

func TestVirtualFileSystem_CopyMove(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	src, err := fs.CreateFolder(ctx, rootID(fs), "src")
	require.NoError(t, err)
	dst, err := fs.CreateFolder(ctx, rootID(fs), "dst")
	require.NoError(t, err)
	file, err := fs.CreateFile(ctx, src.ID, "a.txt", "", strings.NewReader("hello"))
	require.NoError(t, err)

	copied, err := fs.Copy(ctx, file.ID, dst.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "/dst/a.txt", copied.Path)
	assert.NotEqual(t, file.ID, copied.ID)

	_, err = fs.Copy(ctx, file.ID, dst.ID, "")
	assert.ErrorIs(t, err, vfs.ErrConflict)

	moved, err := fs.Move(ctx, file.ID, dst.ID, "b.txt", "")
	require.NoError(t, err)
	assert.Equal(t, file.ID, moved.ID)
	assert.Equal(t, "/dst/b.txt", moved.Path)

	_, err = fs.Move(ctx, file.ID, dst.ID, "b.txt", "")
	assert.ErrorIs(t, err, vfs.ErrConflict)

	_, err = fs.Move(ctx, dst.ID, dst.ID, "", "")
	assert.ErrorIs(t, err, vfs.ErrForbidden)
}

func TestVirtualFileSystem_UpdateItem(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	file, err := fs.CreateFile(ctx, rootID(fs), "a.txt", "", strings.NewReader(""))
	require.NoError(t, err)

	item, err := fs.UpdateItem(ctx, file.ID, []data.Property{{Name: "color", Values: []string{"red"}}}, "")
	require.NoError(t, err)

	var found bool
	for _, p := range item.Properties {
		if p.Name == "color" {
			found = true
			assert.Equal(t, []string{"red"}, p.Values)
		}
	}
	assert.True(t, found)
}

func TestVirtualFileSystem_DeleteRoot(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	err := fs.Delete(ctx, rootID(fs), "")
	assert.ErrorIs(t, err, vfs.ErrForbidden)
}

func TestVirtualFileSystem_Locking(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	folder, err := fs.CreateFolder(ctx, rootID(fs), "docs")
	require.NoError(t, err)
	file, err := fs.CreateFile(ctx, folder.ID, "a.txt", "", strings.NewReader("hello"))
	require.NoError(t, err)

	_, err = fs.Lock(ctx, folder.ID, 0)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
	err = fs.Unlock(ctx, folder.ID, "token")
	assert.ErrorIs(t, err, vfs.ErrConflict)

	info, err := fs.Lock(ctx, file.ID, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Token)

	err = fs.UpdateContent(ctx, file.ID, strings.NewReader("changed"), "", "")
	assert.ErrorIs(t, err, vfs.ErrLocked)
	require.NoError(t, fs.UpdateContent(ctx, file.ID, strings.NewReader("changed"), "", info.Token))

	item, err := fs.GetItem(ctx, file.ID, false, data.NoProperties)
	require.NoError(t, err)
	assert.True(t, item.Locked)

	err = fs.Unlock(ctx, file.ID, "wrong")
	assert.ErrorIs(t, err, vfs.ErrForbidden)
	require.NoError(t, fs.Unlock(ctx, file.ID, info.Token))
}

func TestVirtualFileSystem_ACL(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	folder, err := fs.CreateFolder(ctx, rootID(fs), "private")
	require.NoError(t, err)

	entries, err := fs.GetACL(ctx, folder.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	acl := []data.AccessControlEntry{{Principal: data.Principal{Name: "dev", Type: data.PrincipalUser}, Permissions: []string{data.PermissionAll}}}
	require.NoError(t, fs.UpdateACL(ctx, folder.ID, acl, true, ""))

	entries, err = fs.GetACL(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dev", entries[0].Principal.Name)

	file, err := fs.CreateFile(ctx, folder.ID, "notes.txt", "", strings.NewReader("notes"))
	require.NoError(t, err)

	other := identity.WithUser(t.Context(), &identity.User{ID: "guest"})
	_, err = fs.GetItem(other, folder.ID, false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
	_, err = fs.GetChildren(other, folder.ID, -1, 0, "", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
	_, err = fs.Lock(other, file.ID, 0)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
	assert.ErrorIs(t, fs.Unlock(other, file.ID, "token"), vfs.ErrForbidden)
}

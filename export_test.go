package vfs_test

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Hex(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

func zipContents(t *testing.T, r io.ReadCloser) map[string]string {
	t.Helper()
	defer r.Close()

	buffer, err := io.ReadAll(r)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buffer), int64(len(buffer)))
	require.NoError(t, err)

	result := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		result[f.Name] = string(content)
	}
	return result
}

func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buffer bytes.Buffer
	zw := zip.NewWriter(&buffer)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buffer.Bytes()
}

// newProject creates /project with a.txt, sub/b.txt and sub/c.txt.
func newProject(t *testing.T) (*vfs.VirtualFileSystem, context.Context, *data.Item) {
	t.Helper()

	fs, ctx := newEphemeralFileSystem(t)
	project, err := fs.CreateFolder(ctx, rootID(fs), "project")
	require.NoError(t, err)

	for name, content := range map[string]string{"a.txt": "hello", "sub/b.txt": "world", "sub/c.txt": "x"} {
		_, err := fs.CreateFile(ctx, project.ID, name, "", strings.NewReader(content))
		require.NoError(t, err)
	}
	return fs, ctx, project
}

func TestVirtualFileSystem_ExportZip(t *testing.T) {
	fs, ctx, project := newProject(t)

	stream, err := fs.ExportZip(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "project.zip", stream.FileName)
	assert.Equal(t, data.ContentTypeApplicationZip, stream.MediaType)

	assert.Equal(t, map[string]string{
		"a.txt":     "hello",
		"sub/":      "",
		"sub/b.txt": "world",
		"sub/c.txt": "x",
	}, zipContents(t, stream))

	file, err := fs.GetItemByPath(ctx, "/project/a.txt", "", false, data.NoProperties)
	require.NoError(t, err)
	_, err = fs.ExportZip(ctx, file.ID)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
}

func TestVirtualFileSystem_ExportZipIncremental(t *testing.T) {
	fs, ctx, project := newProject(t)

	t.Run("empty manifest", func(t *testing.T) {
		result, err := fs.ExportZipIncremental(ctx, project.ID, strings.NewReader(""))
		require.NoError(t, err)
		require.False(t, result.NoChanges)
		assert.Len(t, zipContents(t, result.Archive), 4)
	})

	t.Run("no changes", func(t *testing.T) {
		manifest := fmt.Sprintf("%s a.txt\n%s  sub/b.txt\n%s\tsub/c.txt\n", md5Hex("hello"), md5Hex("world"), md5Hex("x"))
		result, err := fs.ExportZipIncremental(ctx, project.ID, strings.NewReader(manifest))
		require.NoError(t, err)
		assert.True(t, result.NoChanges)
		assert.Nil(t, result.Archive)
		assert.Empty(t, result.Removed)
	})

	t.Run("changed and removed", func(t *testing.T) {
		manifest := strings.Join([]string{
			md5Hex("hello") + " a.txt",
			md5Hex("stale") + " sub/b.txt",
			md5Hex("gone") + " gone.txt",
			md5Hex("gone") + " old/deep.txt",
		}, "\n")

		result, err := fs.ExportZipIncremental(ctx, project.ID, strings.NewReader(manifest))
		require.NoError(t, err)
		require.False(t, result.NoChanges)
		assert.Equal(t, []string{"gone.txt", "old/deep.txt"}, result.Removed)
		assert.Equal(t, map[string]string{
			"sub/":      "",
			"sub/b.txt": "world",
			"sub/c.txt": "x",
		}, zipContents(t, result.Archive))
	})

	t.Run("single stale file", func(t *testing.T) {
		manifest := strings.Join([]string{
			md5Hex("hello") + " a.txt",
			md5Hex("stale") + " sub/b.txt",
			md5Hex("x") + " sub/c.txt",
		}, "\n")

		result, err := fs.ExportZipIncremental(ctx, project.ID, strings.NewReader(manifest))
		require.NoError(t, err)
		require.False(t, result.NoChanges)
		assert.Empty(t, result.Removed)
		assert.Equal(t, map[string]string{
			"sub/":      "",
			"sub/b.txt": "world",
		}, zipContents(t, result.Archive))
	})

	t.Run("malformed manifest", func(t *testing.T) {
		_, err := fs.ExportZipIncremental(ctx, project.ID, strings.NewReader("abc a.txt"))
		assert.ErrorIs(t, err, vfs.ErrConflict)
	})
}

func TestVirtualFileSystem_ImportZip(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)
	target, err := fs.CreateFolder(ctx, rootID(fs), "target")
	require.NoError(t, err)

	archive := buildArchive(t, map[string]string{
		"top/readme.md":  "# readme",
		"top/src/app.go": "package app",
	})

	require.NoError(t, fs.ImportZip(ctx, target.ID, bytes.NewReader(archive), false, true))

	stream, err := fs.GetContentByPath(ctx, "/target/src/app.go", "")
	require.NoError(t, err)
	assert.Equal(t, "package app", readStream(t, stream))

	err = fs.ImportZip(ctx, target.ID, bytes.NewReader(archive), false, true)
	assert.ErrorIs(t, err, vfs.ErrConflict)

	require.NoError(t, fs.ImportZip(ctx, target.ID, bytes.NewReader(archive), true, false))
	_, err = fs.GetItemByPath(ctx, "/target/top/readme.md", "", false, data.NoProperties)
	assert.NoError(t, err)
}

func TestVirtualFileSystem_Md5Sums(t *testing.T) {
	fs, ctx, project := newProject(t)

	sums, err := fs.Md5Sums(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []data.Md5Sum{
		{Hash: md5Hex("hello"), Path: "a.txt"},
		{Hash: md5Hex("world"), Path: "sub/b.txt"},
		{Hash: md5Hex("x"), Path: "sub/c.txt"},
	}, sums)

	file, err := fs.GetItemByPath(ctx, "/project/a.txt", "", false, data.NoProperties)
	require.NoError(t, err)
	sums, err = fs.Md5Sums(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestVirtualFileSystem_SyncAndLock(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)
	folder, err := fs.CreateFolder(ctx, rootID(fs), "sync")
	require.NoError(t, err)
	a, err := fs.CreateFile(ctx, folder.ID, "a.txt", "", strings.NewReader("alpha"))
	require.NoError(t, err)

	sums, err := fs.Md5Sums(ctx, folder.ID)
	require.NoError(t, err)
	var manifest strings.Builder
	for _, sum := range sums {
		fmt.Fprintf(&manifest, "%s %s\n", sum.Hash, sum.Path)
	}

	_, err = fs.CreateFile(ctx, folder.ID, "b.txt", "", strings.NewReader("beta"))
	require.NoError(t, err)

	result, err := fs.ExportZipIncremental(ctx, folder.ID, strings.NewReader(manifest.String()))
	require.NoError(t, err)
	require.False(t, result.NoChanges)
	assert.Empty(t, result.Removed)
	assert.Equal(t, map[string]string{"b.txt": "beta"}, zipContents(t, result.Archive))

	other := identity.WithUser(t.Context(), &identity.User{ID: "other", Groups: developer.Groups})
	info, err := fs.Lock(ctx, a.ID, 0)
	require.NoError(t, err)

	err = fs.UpdateContent(other, a.ID, strings.NewReader("overwritten"), "", "")
	assert.ErrorIs(t, err, vfs.ErrLocked)
	assert.ErrorIs(t, fs.Delete(other, a.ID, ""), vfs.ErrLocked)

	stream, err := fs.GetContent(other, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", readStream(t, stream))

	require.NoError(t, fs.UpdateContent(other, a.ID, strings.NewReader("released"), "", info.Token))
}

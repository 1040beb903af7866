package vfs_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/mount"
	"github.com/mwantia/tenantvfs/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualFileSystem_GetChildren(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	for i := range 5 {
		_, err := fs.CreateFile(ctx, rootID(fs), fmt.Sprintf("file-%d.txt", i), "", strings.NewReader("x"))
		require.NoError(t, err)
	}
	folder, err := fs.CreateFolder(ctx, rootID(fs), "folder")
	require.NoError(t, err)

	tests := map[string]struct {
		maxItems  int
		skipCount int
		itemType  string
		names     []string
		numItems  int
		more      bool
	}{
		"all":             {maxItems: -1, names: []string{"file-0.txt", "file-1.txt", "file-2.txt", "file-3.txt", "file-4.txt", "folder"}, numItems: 6},
		"first page":      {maxItems: 2, itemType: "file", names: []string{"file-0.txt", "file-1.txt"}, numItems: 5, more: true},
		"middle page":     {maxItems: 2, skipCount: 2, itemType: "file", names: []string{"file-2.txt", "file-3.txt"}, numItems: 5, more: true},
		"last page":       {maxItems: 2, skipCount: 4, itemType: "file", names: []string{"file-4.txt"}, numItems: 5},
		"skip everything": {maxItems: -1, skipCount: 6, names: []string{}, numItems: 6},
		"folders only":    {maxItems: -1, itemType: "folder", names: []string{"folder"}, numItems: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			list, err := fs.GetChildren(ctx, rootID(fs), tc.maxItems, tc.skipCount, tc.itemType, false, data.NoProperties)
			require.NoError(t, err)

			names := make([]string, 0, len(list.Items))
			for _, item := range list.Items {
				names = append(names, item.Name)
			}
			assert.Equal(t, tc.names, names)
			assert.Equal(t, tc.numItems, list.NumItems)
			assert.Equal(t, tc.more, list.HasMoreItems)
		})
	}

	_, err = fs.GetChildren(ctx, rootID(fs), -1, -1, "", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrConflict)
	_, err = fs.GetChildren(ctx, rootID(fs), -1, 7, "", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrConflict)
	_, err = fs.GetChildren(ctx, rootID(fs), -1, 0, "link", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)

	list, err := fs.GetChildren(ctx, rootID(fs), 1, 0, "file", false, data.NoProperties)
	require.NoError(t, err)
	_, err = fs.GetChildren(ctx, list.Items[0].ID, -1, 0, "", false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)

	empty, err := fs.GetChildren(ctx, folder.ID, -1, 0, "", false, data.NoProperties)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.NumItems)
}

func TestVirtualFileSystem_GetTree(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	_, err := fs.CreateFile(ctx, rootID(fs), "a/b/c.txt", "", strings.NewReader("x"))
	require.NoError(t, err)
	file, err := fs.CreateFile(ctx, rootID(fs), "d.txt", "", strings.NewReader("x"))
	require.NoError(t, err)

	tree, err := fs.GetTree(ctx, rootID(fs), 0, false, data.NoProperties)
	require.NoError(t, err)
	assert.Empty(t, tree.Children)

	tree, err = fs.GetTree(ctx, rootID(fs), 1, false, data.NoProperties)
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "a", tree.Children[0].Item.Name)
	assert.Empty(t, tree.Children[0].Children)
	assert.Equal(t, "d.txt", tree.Children[1].Item.Name)

	tree, err = fs.GetTree(ctx, rootID(fs), -1, false, data.NoProperties)
	require.NoError(t, err)
	leaf := tree.Children[0].Children[0].Children[0]
	assert.Equal(t, "/a/b/c.txt", leaf.Item.Path)

	_, err = fs.GetTree(ctx, file.ID, -1, false, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
}

func TestVirtualFileSystem_GetVersions(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	file, err := fs.CreateFile(ctx, rootID(fs), "a.txt", "", strings.NewReader("v1"))
	require.NoError(t, err)
	for _, content := range []string{"v2", "v3"} {
		require.NoError(t, fs.UpdateContent(ctx, file.ID, strings.NewReader(content), "", ""))
	}

	list, err := fs.GetVersions(ctx, file.ID, 2, 0, data.NoProperties)
	require.NoError(t, err)
	assert.Equal(t, 3, list.NumItems)
	assert.True(t, list.HasMoreItems)
	require.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.Items[0].Length)

	last, err := fs.GetVersions(ctx, file.ID, 2, 2, data.NoProperties)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, file.VersionID, last.Items[0].VersionID)
	assert.False(t, last.HasMoreItems)

	_, err = fs.GetVersions(ctx, file.ID, -1, 4, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrConflict)
	_, err = fs.GetVersions(ctx, rootID(fs), -1, 0, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrForbidden)
}

func TestVirtualFileSystem_Search(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)
	_, err := fs.Search(ctx, "name:*.txt", -1, 0, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrNotSupported)

	fs, ctx = newEphemeralFileSystem(t, mount.WithSearcher(search.NewMemorySearcher()))
	for _, name := range []string{"a.txt", "b.txt", "c.md", "sub/d.txt"} {
		_, err := fs.CreateFile(ctx, rootID(fs), name, "", strings.NewReader(name))
		require.NoError(t, err)
	}

	list, err := fs.Search(ctx, "name:*.txt", 2, 0, data.NoProperties)
	require.NoError(t, err)
	assert.Equal(t, 3, list.NumItems)
	assert.True(t, list.HasMoreItems)
	require.Len(t, list.Items, 2)

	list, err = fs.Search(ctx, "path:/sub/*", -1, 0, data.NoProperties)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "/sub/d.txt", list.Items[0].Path)

	_, err = fs.Search(ctx, "name:*.txt", -1, 4, data.NoProperties)
	assert.ErrorIs(t, err, vfs.ErrConflict)
}

package vfs_test

import (
	"strings"
	"testing"

	"github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualFileSystem_Replace(t *testing.T) {
	fs, ctx := newEphemeralFileSystem(t)

	files := map[string]string{
		"app/config.properties":  "name=${name}\nversion=${version}\nhost=localhost",
		"app/docs/readme.md":     "Project ${name}",
		"app/docs/untouched.txt": "${name}",
	}
	for name, content := range files {
		_, err := fs.CreateFile(ctx, rootID(fs), name, "", strings.NewReader(content))
		require.NoError(t, err)
	}

	sets := []vfs.ReplacementSet{
		{
			Files: []string{`.*\.properties`},
			Entries: []vfs.Variable{
				{Find: "name", Replace: "demo"},
				{Find: "localhost", Replace: "example.org", ReplaceMode: vfs.ReplaceModeText},
			},
		},
		{
			Files:   []string{`docs/.*\.md`},
			Entries: []vfs.Variable{{Find: "name", Replace: "${name}-docs", ReplaceMode: vfs.ReplaceModeVariable}},
		},
	}
	require.NoError(t, fs.Replace(ctx, "/app", sets, ""))

	expected := map[string]string{
		"/app/config.properties":  "name=demo\nversion=${version}\nhost=example.org",
		"/app/docs/readme.md":     "Project ${name}-docs",
		"/app/docs/untouched.txt": "${name}",
	}
	for path, content := range expected {
		stream, err := fs.GetContentByPath(ctx, path, "")
		require.NoError(t, err)
		assert.Equal(t, content, readStream(t, stream), path)
	}

	untouched, err := fs.GetItemByPath(ctx, "/app/docs/untouched.txt", "", false, data.NoProperties)
	require.NoError(t, err)
	versions, err := fs.GetVersions(ctx, untouched.ID, -1, 0, data.NoProperties)
	require.NoError(t, err)
	assert.Equal(t, 1, versions.NumItems)

	err = fs.Replace(ctx, "/app/config.properties", sets, "")
	assert.ErrorIs(t, err, vfs.ErrConflict)
	err = fs.Replace(ctx, "/app", []vfs.ReplacementSet{{Files: []string{"("}}}, "")
	assert.ErrorIs(t, err, vfs.ErrConflict)
}

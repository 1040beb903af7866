package builtin

import (
	"context"
	"fmt"
	"io"
	"os"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	vfserrors "github.com/mwantia/tenantvfs/data/errors"
	"github.com/mwantia/tenantvfs/mount"
)

// ExportCommand writes a folder as zip archive to a local file. With a
// manifest only changed files are exported and removed paths are printed.
type ExportCommand struct{}

func (e *ExportCommand) Name() string        { return "export" }
func (e *ExportCommand) Description() string { return "Export a folder as zip archive" }
func (e *ExportCommand) Usage() string       { return "export [-m manifest] path local.zip" }

func (e *ExportCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return usage(e)
	}

	folder, err := lookup(ctx, fs, args.Args[0])
	if err != nil {
		return 1, err
	}

	manifest := args.String("manifest")
	if manifest == "" {
		archive, err := fs.ExportZip(ctx, folder.ID)
		if err != nil {
			return 1, err
		}
		return writeArchive(archive, args.Args[1])
	}

	f, err := os.Open(manifest)
	if err != nil {
		return 1, vfserrors.InvalidArgument("failed to open manifest '%s': %v", manifest, err)
	}
	defer f.Close()

	result, err := fs.ExportZipIncremental(ctx, folder.ID, f)
	if err != nil {
		return 1, err
	}
	if result.NoChanges {
		fmt.Fprintln(writer, "no changes")
		return 0, nil
	}
	for _, removed := range result.Removed {
		fmt.Fprintf(writer, "removed %s\n", removed)
	}
	return writeArchive(result.Archive, args.Args[1])
}

func (e *ExportCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"manifest": {
				Name:        "manifest",
				Short:       "m",
				Type:        cmd.FlagString,
				Description: "Local md5 manifest, as printed by md5",
			},
		},
	}
}

func writeArchive(archive *mount.ContentStream, local string) (int, error) {
	defer archive.Close()

	f, err := os.Create(local)
	if err != nil {
		return 1, vfserrors.InvalidArgument("failed to create '%s': %v", local, err)
	}

	if _, err := io.Copy(f, archive); err != nil {
		f.Close()
		return 1, vfserrors.Server(err, "failed to write '%s'", local)
	}
	if err := f.Close(); err != nil {
		return 1, vfserrors.Server(err, "failed to write '%s'", local)
	}
	return 0, nil
}

package builtin

import (
	"context"
	"fmt"
	"io"
	"path"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
)

// Md5Command prints a manifest that export --manifest accepts.
type Md5Command struct{}

func (m *Md5Command) Name() string        { return "md5" }
func (m *Md5Command) Description() string { return "Print the md5 of every file below a path" }
func (m *Md5Command) Usage() string       { return "md5 [path]" }

func (m *Md5Command) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) > 1 {
		return usage(m)
	}

	item, err := lookup(ctx, fs, args.Arg(0, "/"))
	if err != nil {
		return 1, err
	}

	// A file is printed from the sums of its parent.
	name := ""
	if !item.IsFolder() {
		name = item.Name
		if item, err = lookup(ctx, fs, path.Dir(item.Path)); err != nil {
			return 1, err
		}
	}

	sums, err := fs.Md5Sums(ctx, item.ID)
	if err != nil {
		return 1, err
	}
	for _, sum := range sums {
		if name == "" || sum.Path == name {
			fmt.Fprintf(writer, "%s  %s\n", sum.Hash, sum.Path)
		}
	}
	return 0, nil
}

func (m *Md5Command) GetFlags() *cmd.CommandFlagSet {
	return nil
}

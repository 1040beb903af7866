package builtin

import (
	"context"
	"io"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
)

type RmCommand struct{}

func (r *RmCommand) Name() string        { return "rm" }
func (r *RmCommand) Description() string { return "Delete a file or a folder with its subtree" }
func (r *RmCommand) Usage() string       { return "rm [--token token] path" }

func (r *RmCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(r)
	}

	item, err := lookup(ctx, fs, args.Args[0])
	if err != nil {
		return 1, err
	}
	if err := fs.Delete(ctx, item.ID, args.String("token")); err != nil {
		return 1, err
	}
	return 0, nil
}

func (r *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"token": tokenFlag(),
		},
	}
}

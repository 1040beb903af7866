package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
)

// MvCommand moves or renames an item. If the destination is an existing
// folder the item is moved into it and keeps its name.
type MvCommand struct{}

func (m *MvCommand) Name() string        { return "mv" }
func (m *MvCommand) Description() string { return "Move or rename a file or folder" }
func (m *MvCommand) Usage() string       { return "mv [--token token] source destination" }

func (m *MvCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return usage(m)
	}

	source, err := lookup(ctx, fs, args.Args[0])
	if err != nil {
		return 1, err
	}

	var parent *data.Item
	var name string

	destination, err := lookup(ctx, fs, args.Args[1])
	switch {
	case err == nil && destination.IsFolder():
		parent, name = destination, source.Name
	case err == nil || errors.Is(err, vfs.ErrNotFound):
		if parent, name, err = parentOf(ctx, fs, args.Args[1]); err != nil {
			return 1, err
		}
	default:
		return 1, err
	}

	item, err := fs.Move(ctx, source.ID, parent.ID, name, args.String("token"))
	if err != nil {
		return 1, err
	}
	fmt.Fprintln(writer, item.Path)
	return 0, nil
}

func (m *MvCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"token": tokenFlag(),
		},
	}
}

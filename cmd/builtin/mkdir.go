package builtin

import (
	"context"
	"errors"
	"io"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
	vfserrors "github.com/mwantia/tenantvfs/data/errors"
)

type MkdirCommand struct{}

func (m *MkdirCommand) Name() string        { return "mkdir" }
func (m *MkdirCommand) Description() string { return "Create a folder" }
func (m *MkdirCommand) Usage() string       { return "mkdir [-p] path" }

func (m *MkdirCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(m)
	}

	if !args.Bool("parents") {
		parent, name, err := parentOf(ctx, fs, args.Args[0])
		if err != nil {
			return 1, err
		}
		if _, err := fs.CreateFolder(ctx, parent.ID, name); err != nil {
			return 1, err
		}
		return 0, nil
	}

	path, err := data.ParsePath(args.Args[0])
	if err != nil {
		return 1, err
	}

	current, err := lookup(ctx, fs, data.Root.String())
	if err != nil {
		return 1, err
	}
	for i := range path.Len() {
		next, err := lookup(ctx, fs, path.SubPath(0, i+1).String())
		switch {
		case err == nil && !next.IsFolder():
			return 1, vfserrors.NotAFolder(next.Path)
		case errors.Is(err, vfs.ErrNotFound):
			if next, err = fs.CreateFolder(ctx, current.ID, path.Element(i)); err != nil {
				return 1, err
			}
		case err != nil:
			return 1, err
		}
		current = next
	}
	return 0, nil
}

func (m *MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"parents": {
				Name:        "parents",
				Short:       "p",
				Type:        cmd.FlagBool,
				Description: "Create missing parent folders and accept existing ones",
			},
		},
	}
}

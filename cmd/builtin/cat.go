package builtin

import (
	"context"
	"io"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	vfserrors "github.com/mwantia/tenantvfs/data/errors"
)

type CatCommand struct{}

func (c *CatCommand) Name() string        { return "cat" }
func (c *CatCommand) Description() string { return "Print the content of a file" }
func (c *CatCommand) Usage() string       { return "cat [-v version] path" }

func (c *CatCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(c)
	}

	stream, err := fs.GetContentByPath(ctx, args.Args[0], args.String("version"))
	if err != nil {
		return 1, err
	}
	defer stream.Close()

	if _, err := io.Copy(writer, stream); err != nil {
		return 1, vfserrors.Server(err, "failed to read '%s'", args.Args[0])
	}
	return 0, nil
}

func (c *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"version": {
				Name:        "version",
				Short:       "v",
				Type:        cmd.FlagString,
				Description: "Version id to print instead of the current content",
			},
		},
	}
}

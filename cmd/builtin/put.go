package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
	vfserrors "github.com/mwantia/tenantvfs/data/errors"
)

// PutCommand uploads a local file. An existing remote folder receives the
// file under its local name.
type PutCommand struct{}

func (p *PutCommand) Name() string        { return "put" }
func (p *PutCommand) Description() string { return "Upload a local file" }
func (p *PutCommand) Usage() string       { return "put [-f] [-t media-type] local remote" }

func (p *PutCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 2 {
		return usage(p)
	}
	local, remote := args.Args[0], args.Args[1]

	f, err := os.Open(local)
	if err != nil {
		return 1, vfserrors.InvalidArgument("failed to open '%s': %v", local, err)
	}
	defer f.Close()

	existing, err := lookup(ctx, fs, remote)
	if err != nil && !errors.Is(err, vfs.ErrNotFound) {
		return 1, err
	}

	if existing != nil && !existing.IsFolder() {
		if !args.Bool("force") {
			return 1, vfserrors.ItemExists(path.Dir(existing.Path), existing.Name)
		}
		if err := fs.UpdateContent(ctx, existing.ID, f, args.String("type"), args.String("token")); err != nil {
			return 1, err
		}
		fmt.Fprintln(writer, existing.Path)
		return 0, nil
	}

	var parent *data.Item
	var name string
	if existing != nil {
		parent, name = existing, filepath.Base(local)
	} else if parent, name, err = parentOf(ctx, fs, remote); err != nil {
		return 1, err
	}

	item, err := fs.CreateFile(ctx, parent.ID, name, args.String("type"), f)
	if err != nil {
		return 1, err
	}
	fmt.Fprintln(writer, item.Path)
	return 0, nil
}

func (p *PutCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"force": {
				Name:        "force",
				Short:       "f",
				Type:        cmd.FlagBool,
				Description: "Store a new version if the remote file exists",
			},
			"type": {
				Name:        "type",
				Short:       "t",
				Type:        cmd.FlagString,
				Description: "Media type, guessed from the name if omitted",
			},
			"token": tokenFlag(),
		},
	}
}

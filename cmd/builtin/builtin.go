// Package builtin contains the commands of the operator shell.
package builtin

import (
	"context"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
	"github.com/mwantia/tenantvfs/data/errors"
)

// Commands returns a new instance of every builtin command.
func Commands() []cmd.Command {
	return []cmd.Command{
		&CatCommand{},
		&ExportCommand{},
		&LockCommand{},
		&LsCommand{},
		&Md5Command{},
		&MkdirCommand{},
		&MvCommand{},
		&PutCommand{},
		&RmCommand{},
		&TreeCommand{},
		&UnlockCommand{},
	}
}

func lookup(ctx context.Context, fs *vfs.VirtualFileSystem, path string) (*data.Item, error) {
	return fs.GetItemByPath(ctx, path, "", false, data.NoProperties)
}

// parentOf resolves the folder that holds raw and returns it together
// with the last segment of raw.
func parentOf(ctx context.Context, fs *vfs.VirtualFileSystem, raw string) (*data.Item, string, error) {
	path, err := data.ParsePath(raw)
	if err != nil {
		return nil, "", err
	}
	if path.IsRoot() {
		return nil, "", errors.RootOperation("create")
	}

	parent, err := lookup(ctx, fs, path.Parent().String())
	if err != nil {
		return nil, "", err
	}
	if !parent.IsFolder() {
		return nil, "", errors.NotAFolder(parent.Path)
	}
	return parent, path.Name(), nil
}

func usage(c cmd.Command) (int, error) {
	return 2, errors.InvalidArgument("usage: %s", c.Usage())
}

func tokenFlag() *cmd.CommandFlag {
	return &cmd.CommandFlag{
		Name:        "token",
		Type:        cmd.FlagString,
		Description: "Lock token of the affected file",
	}
}

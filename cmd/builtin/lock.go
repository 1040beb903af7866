package builtin

import (
	"context"
	"fmt"
	"io"
	"time"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
)

type LockCommand struct{}

func (l *LockCommand) Name() string        { return "lock" }
func (l *LockCommand) Description() string { return "Lock a file and print the lock token" }
func (l *LockCommand) Usage() string       { return "lock [-t timeout] path" }

func (l *LockCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(l)
	}

	item, err := lookup(ctx, fs, args.Args[0])
	if err != nil {
		return 1, err
	}

	info, err := fs.Lock(ctx, item.ID, args.Duration("timeout"))
	if err != nil {
		return 1, err
	}
	fmt.Fprintln(writer, info.Token)
	return 0, nil
}

func (l *LockCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"timeout": {
				Name:        "timeout",
				Short:       "t",
				Type:        cmd.FlagDuration,
				Default:     time.Duration(-1),
				Description: "Lock timeout, zero never expires, the mount default if omitted",
			},
		},
	}
}

type UnlockCommand struct{}

func (u *UnlockCommand) Name() string        { return "unlock" }
func (u *UnlockCommand) Description() string { return "Release the lock of a file" }
func (u *UnlockCommand) Usage() string       { return "unlock --token token path" }

func (u *UnlockCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usage(u)
	}

	item, err := lookup(ctx, fs, args.Args[0])
	if err != nil {
		return 1, err
	}
	if err := fs.Unlock(ctx, item.ID, args.String("token")); err != nil {
		return 1, err
	}
	return 0, nil
}

func (u *UnlockCommand) GetFlags() *cmd.CommandFlagSet {
	token := tokenFlag()
	token.Required = true

	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"token": token,
		},
	}
}

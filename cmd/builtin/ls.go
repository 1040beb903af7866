package builtin

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
)

type LsCommand struct {
}

// Name returns the command identifier
func (ls *LsCommand) Name() string {
	return "ls"
}

// Description returns human-readable help text
func (ls *LsCommand) Description() string {
	return "List the children of a folder"
}

// Usage returns a usage string for help (e.g. "ls -l [path]")
func (ls *LsCommand) Usage() string {
	return "ls [-l] [-t type] [path]"
}

// Execute runs the command with parsed arguments
// Returns exit code (0 = success) and error message
func (ls *LsCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) > 1 {
		return usage(ls)
	}

	item, err := lookup(ctx, fs, args.Arg(0, "/"))
	if err != nil {
		return 1, err
	}

	items := []*data.Item{item}
	if item.IsFolder() {
		list, err := fs.GetChildren(ctx, item.ID, -1, 0, args.String("type"), false, data.NoProperties)
		if err != nil {
			return 1, err
		}
		items = list.Items
	}

	if !args.Bool("long") {
		for _, child := range items {
			fmt.Fprintln(writer, displayName(child))
		}
		return 0, nil
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	for _, child := range items {
		locked := "-"
		if child.Locked {
			locked = "L"
		}
		modified := "-"
		if !child.ModifiedAt.IsZero() {
			modified = child.ModifiedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", child.Type, locked, child.Length, modified, child.MediaType, displayName(child))
	}
	return 0, tw.Flush()
}

// GetFlags returns the flag set for this command (this is optional)
func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"long": {
				Name:        "long",
				Short:       "l",
				Type:        cmd.FlagBool,
				Description: "Show type, lock state, length, modification date and media type",
			},
			"type": {
				Name:        "type",
				Short:       "t",
				Type:        cmd.FlagString,
				Description: "Only list items of this type (file or folder)",
			},
		},
	}
}

func displayName(item *data.Item) string {
	if item.IsFolder() {
		return item.Name + "/"
	}
	return item.Name
}

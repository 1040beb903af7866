package builtin

import (
	"context"
	"fmt"
	"io"
	"strings"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
)

type TreeCommand struct{}

func (t *TreeCommand) Name() string        { return "tree" }
func (t *TreeCommand) Description() string { return "Print the subtree of a folder" }
func (t *TreeCommand) Usage() string       { return "tree [-d depth] [path]" }

func (t *TreeCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) > 1 {
		return usage(t)
	}

	item, err := lookup(ctx, fs, args.Arg(0, "/"))
	if err != nil {
		return 1, err
	}
	if !item.IsFolder() {
		fmt.Fprintln(writer, item.Path)
		return 0, nil
	}

	node, err := fs.GetTree(ctx, item.ID, int(args.Int("depth")), false, data.NoProperties)
	if err != nil {
		return 1, err
	}

	fmt.Fprintln(writer, node.Item.Path)
	printTree(writer, node.Children, 1)
	return 0, nil
}

func (t *TreeCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"depth": {
				Name:        "depth",
				Short:       "d",
				Type:        cmd.FlagInt,
				Default:     int64(-1),
				Description: "Maximum depth, negative for unlimited",
			},
		},
	}
}

func printTree(writer io.Writer, nodes []*data.ItemNode, level int) {
	for _, node := range nodes {
		fmt.Fprintf(writer, "%s%s\n", strings.Repeat("  ", level), displayName(node.Item))
		printTree(writer, node.Children, level+1)
	}
}

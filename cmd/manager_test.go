package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct{}

func (e *echoCommand) Name() string        { return "echo" }
func (e *echoCommand) Description() string { return "Print the arguments" }
func (e *echoCommand) Usage() string       { return "echo [-n] words..." }

func (e *echoCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	line := strings.Join(args.Args, " ")
	if !args.Bool("no-newline") {
		line += "\n"
	}
	fmt.Fprint(writer, line)
	return 0, nil
}

func (e *echoCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"no-newline": {Name: "no-newline", Short: "n", Type: cmd.FlagBool},
		},
	}
}

type noopCommand struct{ name string }

func (n *noopCommand) Name() string                  { return n.name }
func (n *noopCommand) Description() string           { return "" }
func (n *noopCommand) Usage() string                 { return n.name }
func (n *noopCommand) GetFlags() *cmd.CommandFlagSet { return nil }

func (n *noopCommand) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	return 0, nil
}

func TestManager_Register(t *testing.T) {
	m, err := cmd.NewManager(&echoCommand{})
	require.NoError(t, err)

	assert.Error(t, m.Register(&echoCommand{}))
	assert.Error(t, m.Register(nil))
	assert.Error(t, m.Register(&noopCommand{}))
	require.NoError(t, m.Register(&noopCommand{name: "abc"}))

	names := make([]string, 0)
	for _, c := range m.List() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"abc", "echo"}, names)

	require.NoError(t, m.Unregister("abc"))
	assert.Error(t, m.Unregister("abc"))
	_, err = m.Get("abc")
	assert.Error(t, err)

	_, err = cmd.NewManager(&echoCommand{}, &echoCommand{})
	assert.Error(t, err)
}

func TestManager_Execute(t *testing.T) {
	m, err := cmd.NewManager(&echoCommand{}, &noopCommand{name: "noop"})
	require.NoError(t, err)
	ctx := context.Background()

	var out bytes.Buffer
	code, err := m.Execute(ctx, nil, &out, "echo", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello world\n", out.String())

	out.Reset()
	_, err = m.Execute(ctx, nil, &out, "echo", "-n", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", out.String())

	code, err = m.Execute(ctx, nil, &out, "noop", "arg")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = m.Execute(ctx, nil, &out, "echo", "--unknown")
	assert.Error(t, err)
	assert.Equal(t, 1, code)

	code, err = m.Execute(ctx, nil, &out, "missing")
	assert.ErrorContains(t, err, "unknown command 'missing'")
	assert.Equal(t, 1, code)

	_, err = m.Execute(ctx, nil, &out)
	assert.Error(t, err)
}

func TestManager_Help(t *testing.T) {
	m, err := cmd.NewManager(&echoCommand{})
	require.NoError(t, err)

	var out bytes.Buffer
	m.Help(&out)
	assert.Contains(t, out.String(), "echo [-n] words...")
	assert.Contains(t, out.String(), "Print the arguments")
}

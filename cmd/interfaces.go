package cmd

import (
	"context"
	"io"

	vfs "github.com/mwantia/tenantvfs"
)

// Command represents an executable command of the operator shell.
// Commands run against the file system of a single tenant and act as
// the user stored in ctx.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls -l [path]")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, fs *vfs.VirtualFileSystem, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}

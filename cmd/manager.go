package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	vfs "github.com/mwantia/tenantvfs"
	"github.com/mwantia/tenantvfs/data/errors"
)

// Manager handles command registration, parsing, and execution
type Manager struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

func NewManager(cmds ...Command) (*Manager, error) {
	m := &Manager{
		cmds: make(map[string]Command),
	}
	for _, cmd := range cmds {
		if err := m.Register(cmd); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Register registers a custom command
func (m *Manager) Register(cmd Command) error {
	if cmd == nil {
		return errors.InvalidArgument("command must not be nil")
	}

	name := cmd.Name()
	if name == "" {
		return errors.InvalidArgument("command name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cmds[name]; exists {
		return errors.InvalidArgument("command already registered: %s", name)
	}

	m.cmds[name] = cmd
	return nil
}

// Unregister removes a registered command
func (m *Manager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cmds[name]; !exists {
		return errors.InvalidArgument("unknown command '%s'", name)
	}

	delete(m.cmds, name)
	return nil
}

// Get returns a command by name
func (m *Manager) Get(name string) (Command, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd, exists := m.cmds[name]
	if !exists {
		return nil, errors.InvalidArgument("unknown command '%s'", name)
	}

	return cmd, nil
}

// List returns all registered commands sorted by name
func (m *Manager) List() []Command {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]Command, 0, len(m.cmds))
	for _, name := range slices.Sorted(maps.Keys(m.cmds)) {
		commands = append(commands, m.cmds[name])
	}

	return commands
}

// Execute parses and executes a command
func (m *Manager) Execute(ctx context.Context, fs *vfs.VirtualFileSystem, writer io.Writer, args ...string) (int, error) {
	if len(args) == 0 {
		return 1, errors.InvalidArgument("no command specified")
	}

	cmd, err := m.Get(args[0])
	if err != nil {
		return 1, err
	}

	parsedArgs, err := NewParser(cmd.GetFlags()).Parse(args[1:])
	if err != nil {
		return 1, err
	}

	return cmd.Execute(ctx, fs, parsedArgs, writer)
}

// Help writes the usage and description of every command.
func (m *Manager) Help(writer io.Writer) {
	for _, cmd := range m.List() {
		fmt.Fprintf(writer, "  %-28s %s\n", cmd.Usage(), cmd.Description())
	}
}

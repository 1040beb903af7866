package cmd

import "time"

const (
	FlagString   = "string"
	FlagInt      = "int"
	FlagBool     = "bool"
	FlagDuration = "duration"
)

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// Arg returns the positional argument at index i or fallback.
func (a *CommandArgs) Arg(i int, fallback string) string {
	if i < len(a.Args) {
		return a.Args[i]
	}
	return fallback
}

func (a *CommandArgs) String(name string) string {
	v, _ := a.Flags[name].(string)
	return v
}

func (a *CommandArgs) Bool(name string) bool {
	v, _ := a.Flags[name].(bool)
	return v
}

func (a *CommandArgs) Int(name string) int64 {
	v, _ := a.Flags[name].(int64)
	return v
}

func (a *CommandArgs) Duration(name string) time.Duration {
	v, _ := a.Flags[name].(time.Duration)
	return v
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "type" or "t"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "t")
	Type        string `json:"type"`              // "string", "bool", "int", "duration"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
	Multiple    bool   `json:"multiple"`          // Can be specified multiple times
}

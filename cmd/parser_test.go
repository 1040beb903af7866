package cmd_test

import (
	"testing"
	"time"

	"github.com/mwantia/tenantvfs/cmd"
	"github.com/mwantia/tenantvfs/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlagSet() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"long":    {Name: "long", Short: "l", Type: cmd.FlagBool},
			"all":     {Name: "all", Short: "a", Type: cmd.FlagBool},
			"depth":   {Name: "depth", Short: "d", Type: cmd.FlagInt, Default: int64(-1)},
			"timeout": {Name: "timeout", Short: "t", Type: cmd.FlagDuration},
			"tag":     {Name: "tag", Type: cmd.FlagString, Multiple: true},
			"token":   {Name: "token", Type: cmd.FlagString},
		},
	}
}

func TestParser_Parse(t *testing.T) {
	tests := map[string]struct {
		raw      []string
		args     []string
		expected map[string]any
	}{
		"defaults": {
			raw:      []string{"/a"},
			args:     []string{"/a"},
			expected: map[string]any{"depth": int64(-1)},
		},
		"grouped short flags": {
			raw:      []string{"-la", "/a"},
			args:     []string{"/a"},
			expected: map[string]any{"long": true, "all": true, "depth": int64(-1)},
		},
		"short value attached": {
			raw:      []string{"-d3"},
			expected: map[string]any{"depth": int64(3)},
		},
		"short value separate": {
			raw:      []string{"-d", "2", "/b"},
			args:     []string{"/b"},
			expected: map[string]any{"depth": int64(2)},
		},
		"long value with equals": {
			raw:      []string{"--timeout=90s", "--token=abc"},
			expected: map[string]any{"depth": int64(-1), "timeout": 90 * time.Second, "token": "abc"},
		},
		"long value separate": {
			raw:      []string{"--token", "abc", "/c"},
			args:     []string{"/c"},
			expected: map[string]any{"depth": int64(-1), "token": "abc"},
		},
		"multiple": {
			raw:      []string{"--tag", "x", "--tag=y"},
			expected: map[string]any{"depth": int64(-1), "tag": []any{"x", "y"}},
		},
		"double dash": {
			raw:      []string{"--", "-l", "--token"},
			args:     []string{"-l", "--token"},
			expected: map[string]any{"depth": int64(-1)},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			args, err := cmd.NewParser(testFlagSet()).Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.args, args.Args)
			assert.Equal(t, tc.expected, args.Flags)
			assert.Equal(t, tc.raw, args.Raw)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := map[string][]string{
		"unknown long":    {"--unknown"},
		"unknown short":   {"-x"},
		"missing value":   {"--token"},
		"missing short":   {"-d"},
		"invalid int":     {"--depth", "deep"},
		"invalid timeout": {"-t", "soon"},
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := cmd.NewParser(testFlagSet()).Parse(raw)
			assert.ErrorIs(t, err, data.ErrConflict)
		})
	}
}

func TestParser_Required(t *testing.T) {
	flags := &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"token": {Name: "token", Type: cmd.FlagString, Required: true},
		},
	}

	_, err := cmd.NewParser(flags).Parse([]string{"/a"})
	assert.ErrorContains(t, err, "required flag: --token")

	args, err := cmd.NewParser(flags).Parse([]string{"--token", "t", "/a"})
	require.NoError(t, err)
	assert.Equal(t, "t", args.String("token"))
	assert.Equal(t, "/a", args.Arg(0, ""))
	assert.Equal(t, "fallback", args.Arg(1, "fallback"))
}

func TestParser_NilFlagSet(t *testing.T) {
	args, err := cmd.NewParser(nil).Parse([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, args.Args)

	_, err = cmd.NewParser(nil).Parse([]string{"-a"})
	assert.Error(t, err)
}

func TestSplitLine(t *testing.T) {
	tests := map[string]struct {
		line     string
		expected []string
	}{
		"empty":         {line: "   ", expected: nil},
		"words":         {line: "ls -l  /a", expected: []string{"ls", "-l", "/a"}},
		"double quotes": {line: `put "my file.txt" /x`, expected: []string{"put", "my file.txt", "/x"}},
		"single quotes": {line: `cat '/a b/\c'`, expected: []string{"cat", `/a b/\c`}},
		"escape":        {line: `cat /a\ b`, expected: []string{"cat", "/a b"}},
		"empty quotes":  {line: `mv "" /b`, expected: []string{"mv", "", "/b"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			words, err := cmd.SplitLine(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, words)
		})
	}

	_, err := cmd.SplitLine(`cat "open`)
	assert.Error(t, err)
}

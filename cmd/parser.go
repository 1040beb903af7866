package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/tenantvfs/data/errors"
)

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{Flags: make(map[string]*CommandFlag)}
	}
	return &Parser{
		flagSet: flagSet,
	}
}

func (cp *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}
	}

	longToName := make(map[string]string)
	shortToName := make(map[string]string)
	for flagName, flag := range cp.flagSet.Flags {
		longToName[flag.Name] = flagName
		if flag.Short != "" {
			shortToName[flag.Short] = flagName
		}
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "--") {
			key, value, hasValue := parseLongFlag(arg)
			flagName, exists := longToName[key]
			if !exists {
				return nil, errors.InvalidArgument("unknown flag: --%s", key)
			}

			flag := cp.flagSet.Flags[flagName]
			switch {
			case flag.Type == FlagBool && !hasValue:
				args.Flags[flagName] = true
			case hasValue:
				if err := args.set(flag, flagName, value); err != nil {
					return nil, err
				}
			case i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-"):
				if err := args.set(flag, flagName, raw[i+1]); err != nil {
					return nil, err
				}
				i++
			default:
				return nil, errors.InvalidArgument("flag --%s requires a value", key)
			}
			continue
		}

		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			shortFlags := arg[1:]

			for j, shortChar := range shortFlags {
				shortStr := string(shortChar)
				flagName, exists := shortToName[shortStr]
				if !exists {
					return nil, errors.InvalidArgument("unknown flag: -%s", shortStr)
				}

				flag := cp.flagSet.Flags[flagName]
				if flag.Type == FlagBool {
					args.Flags[flagName] = true
					continue
				}

				if j+1 < len(shortFlags) {
					if err := args.set(flag, flagName, shortFlags[j+1:]); err != nil {
						return nil, err
					}
					break
				}
				if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
					if err := args.set(flag, flagName, raw[i+1]); err != nil {
						return nil, err
					}
					i++
					break
				}
				return nil, errors.InvalidArgument("flag -%s requires a value", shortStr)
			}
			continue
		}

		args.Args = append(args.Args, arg)
	}

	for flagName, flag := range cp.flagSet.Flags {
		if !flag.Required {
			continue
		}
		if _, ok := args.Flags[flagName]; !ok {
			if flag.Short != "" {
				return nil, errors.InvalidArgument("required flag: -%s / --%s", flag.Short, flag.Name)
			}
			return nil, errors.InvalidArgument("required flag: --%s", flag.Name)
		}
	}

	return args, nil
}

func (a *CommandArgs) set(flag *CommandFlag, flagName, value string) error {
	v, err := coerce(value, flag.Type)
	if err != nil {
		return errors.InvalidArgument("flag --%s: invalid %s value %q", flag.Name, flag.Type, value)
	}

	if flag.Multiple {
		values, _ := a.Flags[flagName].([]any)
		a.Flags[flagName] = append(values, v)
		return nil
	}
	a.Flags[flagName] = v
	return nil
}

func parseLongFlag(arg string) (key, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

func coerce(value string, typeStr string) (any, error) {
	switch typeStr {
	case FlagInt:
		return strconv.ParseInt(value, 10, 64)
	case FlagBool:
		return value == "true" || value == "1" || value == "yes", nil
	case FlagDuration:
		return time.ParseDuration(value)
	default:
		return value, nil
	}
}

// SplitLine splits a shell line into words. Single and double quotes group
// words, a backslash escapes the next rune outside of single quotes.
func SplitLine(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		quote   rune
		escaped bool
		inWord  bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 || escaped {
		return nil, errors.InvalidArgument("unterminated quote or escape in %q", line)
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}

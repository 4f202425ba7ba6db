package serialize

import (
	"fmt"
	"strings"

	"github.com/mkstack/mkstack/internal/stack"
)

// ParseCommand parses a command string previously produced by Command
// back into the partial configuration it encodes. The leading binary
// name, subcommand and project argument are skipped; everything else must
// be a recognized stack flag.
//
// Values are parsed, not validated: feed the result through
// Registry.Merge to get domain checking and default fill-in.
func ParseCommand(reg *stack.Registry, command string) (map[stack.FieldID]stack.Value, error) {
	fields := strings.Fields(command)
	for len(fields) > 0 && !strings.HasPrefix(fields[0], "--") {
		fields = fields[1:]
	}
	return ParseArgs(reg, fields)
}

// ParseArgs parses a flag argument list (--flag value, --flag=value,
// --bool, --no-bool) into a partial configuration keyed by field id.
func ParseArgs(reg *stack.Registry, args []string) (map[stack.FieldID]stack.Value, error) {
	partial := make(map[stack.FieldID]stack.Value)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
		name := strings.TrimPrefix(arg, "--")

		var inline string
		var hasInline bool
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, inline, hasInline = name[:eq], name[eq+1:], true
		}

		// Negated boolean form.
		if negated := strings.TrimPrefix(name, "no-"); negated != name {
			f, ok := reg.ByFlag(negated)
			if !ok || !f.Bool {
				return nil, fmt.Errorf("unknown flag --%s", name)
			}
			partial[f.ID] = stack.Bool(false)
			continue
		}

		f, ok := reg.ByFlag(name)
		if !ok {
			return nil, fmt.Errorf("unknown flag --%s", name)
		}

		switch {
		case f.Bool:
			if hasInline {
				partial[f.ID] = stack.Bool(inline == "true")
			} else {
				partial[f.ID] = stack.Bool(true)
			}
		case hasInline:
			partial[f.ID] = reg.ParseValue(f.ID, inline)
		default:
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("flag --%s needs a value", name)
			}
			partial[f.ID] = reg.ParseValue(f.ID, args[i])
		}
	}
	return partial, nil
}

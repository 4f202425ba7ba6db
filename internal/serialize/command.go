// Package serialize maps resolved configurations to and from their two
// external encodings: the minimal reproducible command string and the
// builder's shareable URL query string.
package serialize

import (
	"strings"

	"github.com/mkstack/mkstack/internal/stack"
)

// CommandName is the binary name emitted at the head of reproducible
// command strings.
const CommandName = "mkstack"

// Command renders the minimal command line that reproduces cfg. A flag is
// emitted only where the resolved value differs from the field's
// effective default against the final state, so a plain default stack
// serializes to just "mkstack create <project>".
func Command(reg *stack.Registry, cfg stack.Config, project string) string {
	parts := []string{CommandName, "create"}
	if project != "" {
		parts = append(parts, project)
	}
	parts = append(parts, Flags(reg, cfg)...)
	return strings.Join(parts, " ")
}

// Flags returns the minimal flag list for cfg, in registry field order.
//
// Conventions:
//   - boolean fields whose non-default value is false emit --no-<flag>
//   - set-valued fields emit the comma-joined member list, or the "none"
//     sentinel when the default is non-empty but the resolved set is
//     empty (Value.String covers both directions)
func Flags(reg *stack.Registry, cfg stack.Config) []string {
	var out []string
	for _, f := range reg.Fields() {
		v := cfg.ValueOf(f.ID)
		if v.Equal(reg.DefaultFor(f.ID, cfg)) {
			continue
		}
		if f.Bool {
			if v.AsBool() {
				out = append(out, "--"+f.Flag)
			} else {
				out = append(out, "--no-"+f.Flag)
			}
			continue
		}
		out = append(out, "--"+f.Flag, v.String())
	}
	return out
}

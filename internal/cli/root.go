// Package cli wires the mkstack commands. The commands are thin
// adapters: they build a partial configuration from their inputs, call
// the shared resolver, and render the outcome; all rule knowledge lives
// in internal/rules and internal/resolver.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkstack/mkstack/internal/resolver"
	"github.com/mkstack/mkstack/internal/rules"
	"github.com/mkstack/mkstack/internal/stack"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the mkstack root command. The registry and
// resolver are built once here; a rule-table authoring error surfaces as
// a startup failure, never per invocation.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	reg := stack.NewRegistry()
	res, err := resolver.New(reg, rules.Table(reg))

	cmd := &cobra.Command{
		Use:   "mkstack",
		Short: "mkstack - scaffold a typed full-stack project",
		Long:  "mkstack generates starter codebases from a technology-stack selection,\nkept internally consistent by a shared compatibility resolver.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err != nil {
				return WrapExitError(ExitCommandError, "initializing resolver", err)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCreateCommand(opts, res))
	cmd.AddCommand(NewServeCommand(opts, res))
	cmd.AddCommand(NewRulesCommand(opts, res))
	cmd.AddCommand(NewRecentCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

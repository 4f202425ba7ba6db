package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkstack/mkstack/internal/resolver"
	"github.com/mkstack/mkstack/internal/stack"
)

// ruleRow is the JSON shape for one rule-table row.
type ruleRow struct {
	ID       string          `json:"id"`
	Priority int             `json:"priority"`
	Reads    []stack.FieldID `json:"reads"`
	Writes   []stack.FieldID `json:"writes"`
	Note     string          `json:"note"`
}

// NewRulesCommand creates the rules command, which prints the
// compatibility table in evaluation order. Mostly a debugging and
// documentation aid: the table is the single source of truth for what
// mkstack will and will not let you combine.
func NewRulesCommand(rootOpts *RootOptions, res *resolver.Resolver) *cobra.Command {
	return &cobra.Command{
		Use:           "rules",
		Short:         "Print the stack compatibility rule table",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			rows := make([]ruleRow, 0, len(res.Rules()))
			for _, r := range res.Rules() {
				rows = append(rows, ruleRow{
					ID:       r.ID,
					Priority: r.Priority,
					Reads:    r.Reads,
					Writes:   r.Writes,
					Note:     r.Note,
				})
			}

			return formatter.Emit(rows, func(w io.Writer) {
				renderRules(w, rows)
			})
		},
	}
}

func renderRules(w io.Writer, rows []ruleRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "%3d  %-32s reads(%s) writes(%s)\n",
			r.Priority, r.ID, joinFields(r.Reads), joinFields(r.Writes))
		fmt.Fprintf(w, "     %s\n", r.Note)
	}
}

func joinFields(ids []stack.FieldID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

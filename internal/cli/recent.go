package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkstack/mkstack/internal/history"
)

// NewRecentCommand creates the recent command: a listing of past scaffold
// runs with the command string that reproduces each one.
func NewRecentCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		n      int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:           "recent",
		Short:         "List recent scaffold runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			path := dbPath
			if path == "" {
				var err error
				if path, err = defaultHistoryPath(); err != nil {
					return WrapExitError(ExitCommandError, "locating history", err)
				}
			}

			store, err := history.Open(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening history", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), n)
			if err != nil {
				return WrapExitError(ExitCommandError, "reading history", err)
			}

			return formatter.Emit(runs, func(w io.Writer) {
				if len(runs) == 0 {
					fmt.Fprintln(w, "no runs recorded yet")
					return
				}
				for _, r := range runs {
					fmt.Fprintf(w, "%s  %s\n    %s\n",
						r.CreatedAt.Local().Format(time.DateTime), r.Directory, r.Command)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&n, "limit", "n", 10, "number of runs to show")
	cmd.Flags().StringVar(&dbPath, "history-db", "", "override the run-history database path")
	return cmd
}

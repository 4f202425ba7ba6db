package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkstack/mkstack/internal/builder"
	"github.com/mkstack/mkstack/internal/resolver"
)

// NewServeCommand creates the serve command: the visual-builder backend.
// It shares the exact resolver instance the flag path uses, which is the
// point: one rule table, two adapters.
func NewServeCommand(rootOpts *RootOptions, res *resolver.Resolver) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the visual stack builder API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if rootOpts.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			srv := builder.NewServer(res, builder.WithLogger(logger))
			logger.Info("builder listening", "addr", addr)
			if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("serving on %s", addr), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":4321", "listen address")
	return cmd
}

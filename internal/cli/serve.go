package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/liftlog/internal/entrypoint"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

func runServe(opts *options) error {
	entrypoint.Run(opts.config(), opts.version)
	return nil
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return errors.New("serve is not configured")
			}
			return app.Serve(cmd.Context())
		},
	}
}

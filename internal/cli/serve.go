package cli

import (
	"github.com/budgettabs/budgettabs/internal/app"
	"github.com/spf13/cobra"
)

// NewServeCommand runs migrations and starts the HTTP API.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errValidate := validatePort(port); errValidate != nil {
				return errValidate
			}
			appCfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			return app.RunServer(cmd.Context(), appCfg, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", DefaultPort, "server port when PORT and the config file leave it unset")

	return cmd
}

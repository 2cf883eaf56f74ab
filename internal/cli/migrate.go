package cli

import (
	"github.com/budgettabs/budgettabs/internal/app"
	"github.com/spf13/cobra"
)

// NewMigrateCommand applies the schema and exits.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), appCfg)
		},
	}
}

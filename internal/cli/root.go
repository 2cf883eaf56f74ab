package cli

import (
	"fmt"
	"strings"

	"github.com/budgettabs/budgettabs/internal/config"
	"github.com/spf13/cobra"
)

// DefaultPort is used when neither --port, PORT nor the config file sets one.
const DefaultPort = 8080

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the budgettabs CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "budgettabs",
		Short:         "budgettabs - personal budgets split into tabs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path (or env CONFIG_PATH)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// appConfig loads env (and .env) and applies the --config override.
func (o *RootOptions) appConfig() (config.AppConfig, error) {
	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return config.AppConfig{}, err
	}
	if strings.TrimSpace(o.ConfigPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(o.ConfigPath)
	}
	return appCfg, nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}

package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/courier/internal/wire"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Init runs migrations as part of building the store.
			if err := wire.Init(configPath); err != nil {
				return err
			}
			defer wire.Close()

			color.Green("schema applied (%s)", wire.Config().Storage.Driver)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/courier/internal/cli"
	"github.com/example/courier/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "courier",
		Short:   "Courier - marketplace direct messaging service",
		Version: version.String(),
		Long: `Courier is the direct messaging service of the marketplace platform.
It stores user-to-user messages, maintains one conversation per pair of
participants, and serves the inbox and thread APIs.`,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

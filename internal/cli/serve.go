package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/courier/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the messaging HTTP service",
		Long: `Start the courier messaging service.

Loads configuration, opens the store, applies the schema and serves the
messaging API until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Init(configPath); err != nil {
				return err
			}
			defer wire.Close()

			router, err := wire.Router()
			if err != nil {
				return err
			}

			cfg := wire.Config()
			server := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			color.Green("courier listening on %s (%s storage, %s identity)",
				cfg.ListenAddr, cfg.Storage.Driver, cfg.Identity.Mode)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
			case <-stop:
				color.Yellow("shutting down...")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown failed: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	return cmd
}

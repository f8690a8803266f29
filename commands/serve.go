package commands

import (
	"context"
	"time"

	"github.com/giygas/drug-interactions-api/logging"
	"github.com/giygas/drug-interactions-api/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func (c *CLI) newServeCmd() *cobra.Command {
	var logDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.setup(logDir, c.console)
			if err != nil {
				return err
			}
			defer func() {
				if err := logging.Close(); err != nil {
					logging.Warn("Failed to close log file", "error", err)
				}
			}()

			app := NewApp(cfg)
			app.Store.SetServerStartTime(time.Now())

			if err := app.Scheduler.Start(); err != nil {
				return err
			}
			defer app.Scheduler.Stop()

			srv := server.NewServer(cfg, app.HTTPHandler())

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", "logs", "Directory for rotated log files, empty for console only")
	return cmd
}

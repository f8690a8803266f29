// Package commands implements the command line interface of the drug interactions API:
// the HTTP server and one-shot search and interaction checks.
package commands

import (
	"context"
	"io"

	"github.com/giygas/drug-interactions-api/config"
	"github.com/giygas/drug-interactions-api/logging"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface
type CLI struct {
	rootCmd     *cobra.Command
	catalogPath string
	console     io.Writer
}

// New creates the CLI. Running it without a subcommand starts the server.
func New() *CLI {
	c := &CLI{}

	rootCmd := &cobra.Command{
		Use:           "drug-interactions-api",
		Short:         "Drug interaction lookup with fuzzy name matching and severity classification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "Path to the catalog XML file (overrides CATALOG_PATH)")

	serveCmd := c.newServeCmd()
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(c.newSearchCmd())
	rootCmd.AddCommand(c.newCheckCmd())

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and console logs. Used for testing.
func (c *CLI) SetOutput(out, logs io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(logs)
	c.console = logs
}

// setup loads the environment, validates the configuration and installs the logger.
// A nil console logs to stdout.
func (c *CLI) setup(logDir string, console io.Writer) (*config.Config, error) {
	if err := config.LoadEnvFiles(); err != nil {
		logging.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.catalogPath != "" {
		cfg.CatalogPath = c.catalogPath
	}

	// A file logging failure is logged by InitLogger and the console keeps working
	_, _ = logging.InitLogger(logging.Options{
		Dir:            logDir,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		Console:        console,
	})

	return cfg, nil
}

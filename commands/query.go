package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/giygas/drug-interactions-api/catalogparser"
	"github.com/giygas/drug-interactions-api/logging"
	"github.com/spf13/cobra"
)

func (c *CLI) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print the catalog names closest to a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.loadApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := app.Validator.ValidateSearchQuery(args[0]); err != nil {
				return err
			}

			names := app.Engine.Search(cmd.Context(), args[0])
			return writeJSON(cmd.OutOrStdout(), map[string]any{"drugs": names})
		},
	}
}

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <drug> <drug> [drug...]",
		Short: "Print the interactions between the given drugs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.loadApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := app.Validator.ValidateDrugList(args); err != nil {
				return err
			}

			interactions, err := app.Engine.CheckInteractions(cmd.Context(), args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"total_interactions": len(interactions),
				"interactions":       interactions,
			})
		},
	}
}

// loadApp wires the app with logs on stderr only and loads the catalog once.
// A missing catalog leaves the engine empty; a malformed one is an error.
func (c *CLI) loadApp(logs io.Writer) (*App, error) {
	cfg, err := c.setup("", logs)
	if err != nil {
		return nil, err
	}

	app := NewApp(cfg)
	if err := app.Scheduler.Load(); err != nil {
		if !errors.Is(err, catalogparser.ErrCatalogUnavailable) {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		logging.Warn("Catalog not found, continuing with an empty catalog", "path", cfg.CatalogPath, "error", err)
	}
	return app, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/config"
	"github.com/NewsNowIndy/Dashboard/internal/document"
)

var initGenerateKey bool

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database, storage directories and config file",
		Long: `Create the SQLite database with its full-text index, the document and
attachment storage directories, the OCR cache and a default config file.

Running init again is safe; existing data is left untouched.`,
		Example: `  dashboard init
  dashboard init --generate-key >> .env`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVar(&initGenerateKey, "generate-key", false, "Print a new FERNET_KEY line for attachment encryption")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if initGenerateKey {
		key, err := document.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "FERNET_KEY=%s\n", key)
		return nil
	}

	path, err := config.FilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		if !quiet {
			p.PrintSuccess(fmt.Sprintf("Wrote %s", p.FormatPath(path)))
		}
	}

	err = withApp(context.Background(), func(a *app) error { return nil })
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	if !quiet {
		p.PrintSuccess(fmt.Sprintf("Initialized %s", p.FormatPath(cfg.Database.Path)))
		if len(config.LoadSecrets().FernetKeys) == 0 {
			p.PrintWarning("FERNET_KEY is not set; attachments cannot be added or indexed")
		}
	}
	return nil
}

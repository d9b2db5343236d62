package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/config"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the dashboard configuration file.

Configuration is stored in TOML format in the XDG config directory, or at
$DASHBOARD_CONFIG when set. FERNET_KEY and OCR_LANG are read from the
environment or a .env file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigEditCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigPathCommand())
	return cmd
}

// setting is one addressable configuration key.
type setting struct {
	get func(c *config.Config) string
	set func(c *config.Config, v string) error
}

func stringSetting(field func(c *config.Config) *string) setting {
	return setting{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func intSetting(field func(c *config.Config) *int) setting {
	return setting{
		get: func(c *config.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid number: %s", v)
			}
			*field(c) = n
			return nil
		},
	}
}

var settings = map[string]setting{
	"database.path":               stringSetting(func(c *config.Config) *string { return &c.Database.Path }),
	"storage.data_dir":            stringSetting(func(c *config.Config) *string { return &c.Storage.DataDir }),
	"storage.ocr_cache_dir":       stringSetting(func(c *config.Config) *string { return &c.Storage.OCRCacheDir }),
	"ocr.lang":                    stringSetting(func(c *config.Config) *string { return &c.OCR.Lang }),
	"ocr.dpi":                     intSetting(func(c *config.Config) *int { return &c.OCR.DPI }),
	"ocr.max_pages":               intSetting(func(c *config.Config) *int { return &c.OCR.MaxPages }),
	"ocr.command_timeout_seconds": intSetting(func(c *config.Config) *int { return &c.OCR.CommandTimeoutSeconds }),
	"ocr.upload_timeout_seconds":  intSetting(func(c *config.Config) *int { return &c.OCR.UploadTimeoutSeconds }),
	"ocr.ocrmypdf":                stringSetting(func(c *config.Config) *string { return &c.OCR.OCRmyPDF }),
	"ocr.tesseract":               stringSetting(func(c *config.Config) *string { return &c.OCR.Tesseract }),
	"ocr.pdftoppm":                stringSetting(func(c *config.Config) *string { return &c.OCR.Pdftoppm }),
	"ocr.optimize_level":          intSetting(func(c *config.Config) *int { return &c.OCR.OptimizeLevel }),
	"extract.min_chars":           intSetting(func(c *config.Config) *int { return &c.Extract.MinChars }),
	"extract.workers":             intSetting(func(c *config.Config) *int { return &c.Extract.Workers }),
	"search.limit":                intSetting(func(c *config.Config) *int { return &c.Search.Limit }),
	"search.snippet_tokens":       intSetting(func(c *config.Config) *int { return &c.Search.SnippetTokens }),
	"server.addr":                 stringSetting(func(c *config.Config) *string { return &c.Server.Addr }),
	"display.color_output": {
		get: func(c *config.Config) string {
			if c.Display.ColorOutput == nil {
				return "auto"
			}
			return strconv.FormatBool(*c.Display.ColorOutput)
		},
		set: func(c *config.Config, v string) error {
			if v == "auto" {
				c.Display.ColorOutput = nil
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean: %s (use true/false/auto)", v)
			}
			c.Display.ColorOutput = shared.BoolPtr(b)
			return nil
		},
	},
}

func lookupSetting(key string) (setting, error) {
	s, ok := settings[key]
	if !ok {
		return setting{}, fmt.Errorf("unknown configuration key: %s", key)
	}
	return s, nil
}

// settingKeys lists every key in sorted order.
func settingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := config.Load()
			if err != nil {
				return err
			}
			path, err := config.FilePath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# Configuration file: %s\n\n", path)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(current)
		},
	}
}

func newConfigEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open configuration in editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if err := config.DefaultConfig().Save(); err != nil {
					return fmt.Errorf("failed to create default config: %w", err)
				}
			}

			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}

			editCmd := exec.Command(editor, path)
			editCmd.Stdin = os.Stdin
			editCmd.Stdout = os.Stdout
			editCmd.Stderr = os.Stderr
			return editCmd.Run()
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			s, err := lookupSetting(key)
			if err != nil {
				return err
			}

			current, err := config.Load()
			if err != nil {
				return err
			}
			if err := s.set(current, value); err != nil {
				return err
			}
			if err := current.Save(); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			}
			return nil
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookupSetting(args[0])
			if err != nil {
				return err
			}
			current, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.get(current))
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

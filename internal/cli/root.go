package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/config"
)

// Version is stamped at build time.
var Version = "dev"

var (
	cfg     *config.Config
	dbPath  string
	verbose bool
	quiet   bool
	noColor bool

	p = NewPrinter()
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Index and search a newsroom's records archive",
	Long: `Dashboard keeps a full-text index over project documents, FOIA
attachments and media transcripts, with OCR for scanned PDFs and a registry
of the people and organizations they name.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: applyGlobalFlags,
}

// Execute adds all child commands to the root command and runs it. Errors are
// printed before being returned.
func Execute() error {
	loadConfig()
	rootCmd.AddCommand(
		newInitCommand(),
		newAddCommand(),
		newProjectsCommand(),
		newReindexCommand(),
		newBackfillCommand(),
		newReindexStaleCommand(),
		newCleanupCommand(),
		newUnindexCommand(),
		newOCRBackfillCommand(),
		newEntitiesRebuildCommand(),
		newEntitiesCommand(),
		newSearchCommand(),
		newStatsCommand(),
		newCacheCommand(),
		newConfigCommand(),
		newWebCommand(),
		newMCPCommand(),
		newTuiCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		p.PrintError(err.Error())
		return err
	}
	return nil
}

func loadConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "database", "d", "", "Database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func applyGlobalFlags(cmd *cobra.Command, args []string) error {
	switch {
	case verbose && quiet:
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.ErrorLevel)
	}

	color := cfg.Display.ColorOutput
	if noColor || (color != nil && !*color) {
		lipgloss.SetColorProfile(termenv.Ascii)
		log.SetColorProfile(termenv.Ascii)
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return nil
}

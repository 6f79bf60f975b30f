package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabimport/internal/config"
	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/KaramelBytes/tabimport/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tabimport",
	Short: "Import delimited ASCII tables and convert them to numeric data",
	Long: `tabimport reads delimited text files (txt, csv, dat) into tables, optionally
converting every column to numbers using a chosen numeric locale. Tables can be
summarized, plotted, exported to XLSX, Arrow or Parquet, or served over HTTP.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabimport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
	} else {
		cfg = c
	}

	level, format := "info", "text"
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	if debug {
		level = "debug"
	}
	logging.Setup(level, format)
}

// baseOptions returns the configured import defaults.
func baseOptions() (importer.Options, error) {
	if cfg == nil {
		return importer.DefaultOptions(), nil
	}
	opt, err := cfg.ImportOptions()
	if err != nil {
		return importer.Options{}, fmt.Errorf("config: %w", err)
	}
	return opt, nil
}

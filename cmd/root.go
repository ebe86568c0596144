package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/housing-explorer/internal/config"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string
	// Parsing flags (override config if set)
	flagDelimiter string
	flagDecimal   string
	flagThousands string
	flagSheet     string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "housing",
	Short: "Housing Explorer: explore California housing data from the terminal or a browser",
	Long: `Housing Explorer loads the California housing dataset (or any CSV/XLSX with similar columns),
filters it on a map, computes summary statistics and correlations, and serves the same panels
over a JSON HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	defer func() { _ = logging.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		_ = logging.Sync()
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.housing-explorer/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log encoding: console|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (sniffed if omitted)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	rootCmd.PersistentFlags().StringVar(&flagSheet, "sheet", "", "XLSX: sheet name to load (first sheet if omitted)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-format") && logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	if err := logging.Init(logging.Config{Level: level, Development: debug, Encoding: cfg.LogFormat}); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to init logger: %v\n", err)
		return
	}
	logging.Get().Debug("config loaded", zap.String("config", cfgFile), zap.String("builtin_dataset", cfg.BuiltinDataset))
}

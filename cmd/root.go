package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/BrightBytes/insight-cli/internal/config"
	"github.com/BrightBytes/insight-cli/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration and session logger
	cfg      *cfgpkg.Global
	log      *zap.Logger
	activity *logging.Activity
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Insight CLI: audit tabular data into statistics, charts and advisories",
	Long: `Insight ingests CSV/TSV/XLSX files into a local collection, computes
descriptive statistics, correlation and categorical aggregation over a
chosen coordinate mapping, derives a rule-based advisory, and exports a
printable report.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(initSession)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.insight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func initSession() {
	log, activity = logging.New(debug)
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c
}

// Package cmd implements the CLI commands for reportpipe using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/core/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Persistent flag variables.
var (
	flagConfig  string
	flagLogMode string
)

var rootCmd = &cobra.Command{
	Use:   "reportpipe",
	Short: "reportpipe — turn activity report snapshots into PDF, HTML, Markdown or JSON",
	Long: `reportpipe normalizes uploaded photos, spreadsheets and PDFs, composes them
with a report snapshot into the fixed activity report template, and renders
the result.

Usage:
  reportpipe ingest <file>... [flags]
  reportpipe export <record.json> --pdf [flags]
  reportpipe watch <record.json> --out preview.pdf`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (default: built-in settings)")
	rootCmd.PersistentFlags().StringVar(&flagLogMode, "log", "", "Log mode: dev, prod or off (overrides config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger for a command run.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagLogMode != "" {
		cfg.Log.Mode = flagLogMode
	}
	log, err := logging.New(cfg.Log.Mode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

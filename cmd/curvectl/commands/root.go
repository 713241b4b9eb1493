package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/multicurve/logger"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "curvectl",
	Short: "Calibrate and serve multi-curve rate groups",
	Long: `curvectl builds discount, forward and survival curves from market
quotes and either writes the calibrated curves as a JSON report or
serves them over HTTP.

Examples:
  curvectl validate --group eur.yaml
  curvectl calibrate --group eur.yaml --quotes quotes.csv --valuation 2026-07-15
  curvectl serve`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (json|console)")
}

func newLogger() zerolog.Logger {
	return logger.New(logLevel, logFormat)
}

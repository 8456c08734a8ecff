// salesctl validates and analyzes sales exports from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sales-insight/internal/config"
	"sales-insight/internal/observability"
	"sales-insight/internal/services"
)

var version = "dev"

// CLI flags
var (
	prettyOutput  bool
	logLevel      string
	watchDebounce time.Duration
)

// errInvalid marks a run whose dataset failed validation. The report has
// already been written; main only needs to set the exit code.
var errInvalid = errors.New("dataset failed validation")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		}
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Validate and analyze sales data files",
	Long: `salesctl runs the sales validation and analytics pipeline on local CSV and XLSX files.

Required columns: date, product, quantity, price, customer.

Examples:
  salesctl validate orders.csv
  salesctl analyze --pretty orders.xlsx
  salesctl watch ./incoming`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&prettyOutput, "pretty", "p", false, "Render a human-readable summary instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Wait this long after the last write before validating")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
}

func newSales() *services.Sales {
	logger := observability.NewLoggerTo(os.Stderr, config.LoggerConfig{
		Level:  logLevel,
		Format: "text",
	})
	return services.NewSales(logger)
}

func outputMode() mode {
	if prettyOutput {
		return modePretty
	}
	return modeJSON
}

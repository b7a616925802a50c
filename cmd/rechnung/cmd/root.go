package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "rechnung",
	Short: "Compute and manage German e-invoices (XRechnung, ZUGFeRD)",
	Long: `Rechnung is an invoice computation and lifecycle engine for
German electronic invoicing.

Supports:
  - Exact decimal totals and per-rate VAT summaries
  - Draft, final, sent, paid, cancelled lifecycle with locked records
  - XRechnung routing for public-sector buyers (Leitweg-ID)

Examples:
  # Start the HTTP API server
  rechnung serve

  # Compute totals for a set of line items
  rechnung totals items.json

  # Print the VAT summary as a table
  rechnung totals items.json -f table`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

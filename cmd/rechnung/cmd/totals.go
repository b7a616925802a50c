package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/rechnung/internal/calc"
	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
)

var totalsCmd = &cobra.Command{
	Use:   "totals [file]",
	Short: "Compute invoice totals from a line items file",
	Long: `Compute subtotal, VAT total, grand total, and the per-rate VAT
summary for a JSON array of line items. Reads stdin when the file
argument is "-" or omitted.

Item fields: description, quantity, unit, unit_price, vat_rate.
Quantities and amounts accept JSON numbers or strings.

Examples:
  rechnung totals items.json
  cat items.json | rechnung totals
  rechnung totals items.json -f table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTotals,
}

func init() {
	rootCmd.AddCommand(totalsCmd)
}

// totalsOutput is the json rendering of the computed aggregates.
type totalsOutput struct {
	Subtotal   string           `json:"subtotal"`
	VATTotal   string           `json:"vat_total"`
	Total      string           `json:"total"`
	VATSummary []vatSummaryLine `json:"vat_summary"`
}

type vatSummaryLine struct {
	Rate string `json:"rate"`
	Net  string `json:"net"`
	Tax  string `json:"tax"`
}

func runTotals(cmd *cobra.Command, args []string) error {
	var reader io.Reader = os.Stdin
	source := "stdin"
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		reader = file
		source = args[0]
	}

	var items []model.InvoiceItem
	if err := json.NewDecoder(reader).Decode(&items); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	printVerbose("read %d items from %s\n", len(items), source)

	totals, err := calc.ComputeTotals(items)
	if err != nil {
		return err
	}
	summary, err := calc.VATSummary(items)
	if err != nil {
		return err
	}

	out := totalsOutput{
		Subtotal: money.RoundDisplay(totals.Subtotal).StringFixed(2),
		VATTotal: money.RoundDisplay(totals.Tax).StringFixed(2),
		Total:    money.RoundDisplay(totals.Total).StringFixed(2),
	}
	for _, e := range summary {
		out.VATSummary = append(out.VATSummary, vatSummaryLine{
			Rate: e.Rate.StringFixed(2),
			Net:  money.RoundDisplay(e.Net).StringFixed(2),
			Tax:  money.RoundDisplay(e.Tax).StringFixed(2),
		})
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	// Table output
	fmt.Printf("Subtotal:  %12s\n", out.Subtotal)
	for _, line := range out.VATSummary {
		fmt.Printf("VAT %5s%%: %11s  (net %s)\n", line.Rate, line.Tax, line.Net)
	}
	fmt.Printf("VAT total: %12s\n", out.VATTotal)
	fmt.Printf("Total:     %12s\n", out.Total)
	return nil
}

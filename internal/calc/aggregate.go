// Package calc computes per-line and per-invoice monetary aggregates.
//
// Aggregation is exact: values are only rounded to the minor unit by the
// caller at display or finalization time (money.RoundDisplay).
package calc

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
)

// LineTotal returns quantity * unitPrice for one item. A zero quantity
// contributes a zero-valued line; a negative quantity is rejected.
func LineTotal(item model.InvoiceItem) (decimal.Decimal, error) {
	if item.Quantity.IsZero() {
		return money.Zero, nil
	}
	return money.LineTotal(item.Quantity, item.UnitPrice)
}

// LineTax returns the tax amount for one item.
func LineTax(item model.InvoiceItem) (decimal.Decimal, error) {
	net, err := LineTotal(item)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return money.TaxAmount(net, item.VATRate)
}

// Subtotal sums the line totals over all items. Order-independent.
func Subtotal(items []model.InvoiceItem) (decimal.Decimal, error) {
	total := money.Zero
	for _, item := range items {
		line, err := LineTotal(item)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(line)
	}
	return total, nil
}

// TotalTax sums the line taxes over all items.
func TotalTax(items []model.InvoiceItem) (decimal.Decimal, error) {
	total := money.Zero
	for _, item := range items {
		tax, err := LineTax(item)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(tax)
	}
	return total, nil
}

// GrandTotal returns subtotal + total tax.
func GrandTotal(items []model.InvoiceItem) (decimal.Decimal, error) {
	subtotal, err := Subtotal(items)
	if err != nil {
		return decimal.Decimal{}, err
	}
	tax, err := TotalTax(items)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return subtotal.Add(tax), nil
}

// Totals bundles the three invoice aggregates.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals returns all aggregates in one pass.
func ComputeTotals(items []model.InvoiceItem) (Totals, error) {
	subtotal := money.Zero
	tax := money.Zero
	for _, item := range items {
		line, err := LineTotal(item)
		if err != nil {
			return Totals{}, err
		}
		lineTax, err := money.TaxAmount(line, item.VATRate)
		if err != nil {
			return Totals{}, err
		}
		subtotal = subtotal.Add(line)
		tax = tax.Add(lineTax)
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}, nil
}

// VATSummary groups items by exact VAT rate, summing net and tax per
// group. The result is sorted by rate descending; equal rates keep their
// first-seen order. Zero-valued lines still participate in grouping.
func VATSummary(items []model.InvoiceItem) ([]model.VatSummaryEntry, error) {
	entries := make([]model.VatSummaryEntry, 0, len(items))
	index := make(map[string]int)

	for _, item := range items {
		net, err := LineTotal(item)
		if err != nil {
			return nil, err
		}
		tax, err := money.TaxAmount(net, item.VATRate)
		if err != nil {
			return nil, err
		}

		key := item.VATRate.String()
		i, ok := index[key]
		if !ok {
			i = len(entries)
			index[key] = i
			entries = append(entries, model.VatSummaryEntry{Rate: item.VATRate, Net: money.Zero, Tax: money.Zero})
		}
		entries[i].Net = entries[i].Net.Add(net)
		entries[i].Tax = entries[i].Tax.Add(tax)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rate.GreaterThan(entries[j].Rate)
	})
	return entries, nil
}

// Validate rejects malformed numeric input before any persistence call is
// attempted: negative quantities and negative rates are errors, never
// silently clamped.
func Validate(items []model.InvoiceItem) error {
	for _, item := range items {
		if item.Quantity.IsNegative() {
			return &money.InvalidQuantityError{Quantity: item.Quantity}
		}
		if item.VATRate.IsNegative() {
			return &money.InvalidRateError{Rate: item.VATRate}
		}
	}
	return nil
}

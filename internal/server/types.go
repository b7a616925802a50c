package server

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
)

// ItemPayload is one invoice line as sent by clients. Quantities and
// amounts accept JSON numbers or strings.
type ItemPayload struct {
	ProductID   *int64          `json:"product,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// InvoiceRequest is the payload for creating or updating an invoice.
// Dates use the YYYY-MM-DD wire format.
type InvoiceRequest struct {
	CustomerID     int64         `json:"customer" binding:"required"`
	Format         string        `json:"format,omitempty"`
	InvoiceDate    string        `json:"invoice_date,omitempty"`
	DueDate        string        `json:"due_date,omitempty"`
	LeitwegID      string        `json:"leitweg_id,omitempty"`
	BuyerReference string        `json:"buyer_reference,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	PaymentTerms   string        `json:"payment_terms,omitempty"`
	Items          []ItemPayload `json:"items,omitempty"`
}

// PreviewRequest carries unsaved items for live totals.
type PreviewRequest struct {
	Items []ItemPayload `json:"items"`
}

// EmailRequest is the payload for the send_email action.
type EmailRequest struct {
	To string `json:"to,omitempty"`
}

// VatSummaryOutput is one per-rate aggregate row, display-rounded.
type VatSummaryOutput struct {
	Rate decimal.Decimal `json:"rate"`
	Net  decimal.Decimal `json:"net"`
	Tax  decimal.Decimal `json:"tax"`
}

// TotalsOutput holds display-rounded invoice aggregates.
type TotalsOutput struct {
	Subtotal   decimal.Decimal    `json:"subtotal"`
	VATTotal   decimal.Decimal    `json:"vat_total"`
	Total      decimal.Decimal    `json:"total"`
	VATSummary []VatSummaryOutput `json:"vat_summary"`
}

// InvoiceResponse is a stored invoice together with its recomputed
// aggregates.
type InvoiceResponse struct {
	*model.Invoice
	TotalsOutput
}

// ValidationResponse is the response for the validate action.
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// EmailResponse is the response for the send_email action.
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// Partial creation reporting
	Created []int `json:"created_positions,omitempty"`
	Failed  []int `json:"failed_positions,omitempty"`
}

const dateWire = "2006-01-02"

func parseWireDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateWire, s)
	if err != nil {
		return time.Time{}, model.NewDataError(field, s)
	}
	return t, nil
}

func toItems(payloads []ItemPayload) ([]model.InvoiceItem, error) {
	items := make([]model.InvoiceItem, 0, len(payloads))
	for _, p := range payloads {
		unit, err := model.ParseUnit(p.Unit)
		if err != nil {
			return nil, err
		}
		items = append(items, model.InvoiceItem{
			ProductID:   p.ProductID,
			SKU:         p.SKU,
			Description: p.Description,
			Quantity:    p.Quantity,
			Unit:        unit,
			UnitPrice:   p.UnitPrice,
			VATRate:     p.VATRate,
		})
	}
	return items, nil
}

func toTotalsOutput(subtotal, tax, total decimal.Decimal, summary []model.VatSummaryEntry) TotalsOutput {
	out := TotalsOutput{
		Subtotal:   money.RoundDisplay(subtotal),
		VATTotal:   money.RoundDisplay(tax),
		Total:      money.RoundDisplay(total),
		VATSummary: make([]VatSummaryOutput, 0, len(summary)),
	}
	for _, e := range summary {
		out.VATSummary = append(out.VATSummary, VatSummaryOutput{
			Rate: e.Rate,
			Net:  money.RoundDisplay(e.Net),
			Tax:  money.RoundDisplay(e.Tax),
		})
	}
	return out
}

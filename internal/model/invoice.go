// Package model defines the invoice domain types shared across the engine.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle status of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinal     Status = "final"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// ParseStatus maps a raw value onto a Status. Unknown values are a data
// error, never defaulted.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusFinal, StatusSent, StatusPaid, StatusCancelled:
		return Status(s), nil
	}
	return "", NewDataError("status", s)
}

// Format is the electronic invoice document format.
type Format string

const (
	// FormatXRechnung is the XML-only format required for public-sector buyers.
	FormatXRechnung Format = "xrechnung"
	// FormatZUGFeRD embeds the XML inside a PDF.
	FormatZUGFeRD Format = "zugferd"
)

// ParseFormat maps a raw value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatXRechnung, FormatZUGFeRD:
		return Format(s), nil
	}
	return "", NewDataError("format", s)
}

// Unit is a UN/ECE Recommendation 20 unit code.
type Unit string

const (
	UnitHour     Unit = "HUR"
	UnitDay      Unit = "DAY"
	UnitMonth    Unit = "MON"
	UnitLumpSum  Unit = "C62"
	UnitPiece    Unit = "H87"
	UnitKilogram Unit = "KGM"
	UnitMeter    Unit = "MTR"
	UnitLiter    Unit = "LTR"
)

// ParseUnit maps a raw value onto a Unit code.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitHour, UnitDay, UnitMonth, UnitLumpSum, UnitPiece, UnitKilogram, UnitMeter, UnitLiter:
		return Unit(s), nil
	}
	return "", NewDataError("unit", s)
}

// InvoiceItem is a single invoice line. Items are owned by their parent
// invoice and live and die with it.
type InvoiceItem struct {
	ID        int64           `json:"id,omitempty"`
	InvoiceID int64           `json:"invoice,omitempty"`
	ProductID *int64          `json:"product,omitempty"`
	Position  int             `json:"position"`
	SKU       string          `json:"sku,omitempty"`
	Description string        `json:"description"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      Unit            `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VATRate   decimal.Decimal `json:"vat_rate"`
}

// Invoice is the aggregate root. Monetary totals are never stored on the
// struct; they are always recomputed from Items so they cannot diverge.
type Invoice struct {
	ID             int64         `json:"id,omitempty"`
	ClientRef      string        `json:"client_ref,omitempty"`
	Number         string        `json:"invoice_number,omitempty"`
	CustomerID     int64         `json:"customer"`
	Status         Status        `json:"status"`
	Format         Format        `json:"format"`
	InvoiceDate    time.Time     `json:"invoice_date"`
	DueDate        time.Time     `json:"due_date"`
	LeitwegID      string        `json:"leitweg_id,omitempty"`
	BuyerReference string        `json:"buyer_reference,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	PaymentTerms   string        `json:"payment_terms,omitempty"`
	Items          []InvoiceItem `json:"items,omitempty"`
}

// NewDraft returns an unsaved draft invoice for the given customer. The
// client reference identifies the draft until the store assigns an id.
func NewDraft(customerID int64) *Invoice {
	return &Invoice{
		ClientRef:  uuid.NewString(),
		CustomerID: customerID,
		Status:     StatusDraft,
		Format:     FormatZUGFeRD,
	}
}

// Clone returns a deep copy, items included.
func (inv *Invoice) Clone() *Invoice {
	cp := *inv
	cp.Items = make([]InvoiceItem, len(inv.Items))
	copy(cp.Items, inv.Items)
	return &cp
}

// VatSummaryEntry aggregates net and tax per VAT rate. It is a derived view
// over an invoice's items, recomputed on demand and never persisted.
type VatSummaryEntry struct {
	Rate decimal.Decimal `json:"rate"`
	Net  decimal.Decimal `json:"net"`
	Tax  decimal.Decimal `json:"tax"`
}

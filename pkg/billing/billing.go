// Package billing provides a public API for the invoice computation and
// lifecycle engine.
//
// This package exposes the core types for building, computing, and
// controlling German electronic invoices (XRechnung, ZUGFeRD).
//
// Example usage:
//
//	eng := billing.New(billing.Options{})
//	inv, err := eng.CreateDraft(ctx, billing.NewDraft(customerID), items)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(inv.Status)
package billing

import "github.com/rezonia/rechnung/internal/model"

// Re-export core types for public API
type (
	Invoice         = model.Invoice
	InvoiceItem     = model.InvoiceItem
	Customer        = model.Customer
	Product         = model.Product
	Status          = model.Status
	Format          = model.Format
	Unit            = model.Unit
	VatSummaryEntry = model.VatSummaryEntry
)

// Re-export lifecycle statuses
const (
	StatusDraft     = model.StatusDraft
	StatusFinal     = model.StatusFinal
	StatusSent      = model.StatusSent
	StatusPaid      = model.StatusPaid
	StatusCancelled = model.StatusCancelled
)

// Re-export document formats
const (
	FormatXRechnung = model.FormatXRechnung
	FormatZUGFeRD   = model.FormatZUGFeRD
)

// Re-export unit codes
const (
	UnitHour     = model.UnitHour
	UnitDay      = model.UnitDay
	UnitMonth    = model.UnitMonth
	UnitLumpSum  = model.UnitLumpSum
	UnitPiece    = model.UnitPiece
	UnitKilogram = model.UnitKilogram
	UnitMeter    = model.UnitMeter
	UnitLiter    = model.UnitLiter
)

// Re-export error types
type (
	InvalidStateError    = model.InvalidStateError
	DataError            = model.DataError
	UpstreamError        = model.UpstreamError
	PartialCreationError = model.PartialCreationError
)

// NewDraft returns an unsaved draft invoice for the given customer.
func NewDraft(customerID int64) *Invoice {
	return model.NewDraft(customerID)
}

// Package store defines the collaborator contracts the engine consumes.
// Persistence, document generation, and mail delivery are external
// systems; the engine only knows these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/rezonia/rechnung/internal/model"
)

// ErrNotFound is returned for lookups of unknown ids.
var ErrNotFound = errors.New("record not found")

// InvoiceStore persists invoice headers and line items. Implementations
// assign server-side ids on create.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, inv *model.Invoice) (*model.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	ListInvoices(ctx context.Context) ([]*model.Invoice, error)

	CreateInvoiceItem(ctx context.Context, invoiceID int64, item *model.InvoiceItem) (*model.InvoiceItem, error)
	UpdateInvoiceItem(ctx context.Context, id int64, item *model.InvoiceItem) (*model.InvoiceItem, error)
	DeleteInvoiceItem(ctx context.Context, id int64) error
	GetInvoiceItem(ctx context.Context, id int64) (*model.InvoiceItem, error)

	// NextInvoiceNumber hands out the definitive invoice number assigned
	// at finalization.
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
}

// DirectoryStore resolves customer and product references. Read-only from
// the engine's point of view.
type DirectoryStore interface {
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
}

// ValidationResult is the outcome of a compliance validation run.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// EmailResult is the outcome of a send-email request.
type EmailResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DocumentService renders compliant documents and delivers them. The
// engine never generates XML or PDF payloads itself.
type DocumentService interface {
	RenderXML(ctx context.Context, inv *model.Invoice) ([]byte, error)
	RenderPDF(ctx context.Context, inv *model.Invoice) ([]byte, error)
	SendEmail(ctx context.Context, inv *model.Invoice, address string) (*EmailResult, error)
	Validate(ctx context.Context, inv *model.Invoice) (*ValidationResult, error)
}

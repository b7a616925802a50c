// Package fields derives dependent invoice fields from customer attributes.
package fields

import (
	"time"

	"github.com/rezonia/rechnung/internal/model"
)

// DateOnly strips the time-of-day component so calendar arithmetic cannot
// drift across time zones.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DueDate returns invoiceDate + paymentTermsDays calendar days.
//
// Callers invoke this when the customer selection changes. It is not kept
// in sync automatically if the invoice date is edited afterwards; re-invoke
// it explicitly in that case.
func DueDate(invoiceDate time.Time, paymentTermsDays int) time.Time {
	return DateOnly(invoiceDate).AddDate(0, 0, paymentTermsDays)
}

// ResolveFormat forces XRechnung whenever the customer carries a
// Leitweg-ID, regardless of the previously selected format. Otherwise the
// current selection is retained.
//
// The override is one-way: selecting a customer without a Leitweg-ID later
// does not revert the format. Callers decide whether to reset it.
func ResolveFormat(customer *model.Customer, current model.Format) model.Format {
	if customer != nil && customer.LeitwegID != "" {
		return model.FormatXRechnung
	}
	return current
}

// ApplyCustomerDefaults seeds the fields derived from a customer selection:
// routing id, due date, and document format.
func ApplyCustomerDefaults(inv *model.Invoice, customer *model.Customer) {
	if customer == nil {
		return
	}
	inv.LeitwegID = customer.LeitwegID
	base := inv.InvoiceDate
	if base.IsZero() {
		base = time.Now()
	}
	inv.DueDate = DueDate(base, customer.PaymentTermsDays)
	inv.Format = ResolveFormat(customer, inv.Format)
}

// SeedFromProduct copies the catalog values onto a line item.
func SeedFromProduct(item *model.InvoiceItem, product *model.Product) {
	if product == nil {
		return
	}
	item.ProductID = &product.ID
	item.SKU = product.SKU
	item.Description = product.Name
	item.Unit = product.Unit
	item.UnitPrice = product.UnitPrice
	item.VATRate = product.VATRate
}

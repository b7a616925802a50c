package fields_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/rechnung/internal/fields"
	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
)

func TestDueDate(t *testing.T) {
	invoiceDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := fields.DueDate(invoiceDate, 30)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), due)
}

func TestDueDate_MonthBoundary(t *testing.T) {
	invoiceDate := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	due := fields.DueDate(invoiceDate, 14)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), due)
}

func TestDueDate_NoTimezoneDrift(t *testing.T) {
	// A late-evening local timestamp must not shift the calendar day.
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	invoiceDate := time.Date(2025, 3, 30, 23, 30, 0, 0, berlin)
	due := fields.DueDate(invoiceDate, 1)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), due)
}

func TestDueDate_ZeroDays(t *testing.T) {
	invoiceDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, invoiceDate, fields.DueDate(invoiceDate, 0))
}

func TestResolveFormat_LeitwegForcesXRechnung(t *testing.T) {
	customer := &model.Customer{LeitwegID: "991-12345-67"}

	resolved := fields.ResolveFormat(customer, model.FormatZUGFeRD)
	assert.Equal(t, model.FormatXRechnung, resolved)
}

func TestResolveFormat_NoLeitwegKeepsSelection(t *testing.T) {
	customer := &model.Customer{}

	assert.Equal(t, model.FormatZUGFeRD, fields.ResolveFormat(customer, model.FormatZUGFeRD))
	// one-way override: a previously forced xrechnung is not reverted
	assert.Equal(t, model.FormatXRechnung, fields.ResolveFormat(customer, model.FormatXRechnung))
}

func TestResolveFormat_NilCustomer(t *testing.T) {
	assert.Equal(t, model.FormatZUGFeRD, fields.ResolveFormat(nil, model.FormatZUGFeRD))
}

func TestApplyCustomerDefaults(t *testing.T) {
	inv := model.NewDraft(3)
	inv.InvoiceDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	customer := &model.Customer{
		ID:               3,
		LeitwegID:        "991-12345-67",
		PaymentTermsDays: 30,
	}

	fields.ApplyCustomerDefaults(inv, customer)

	assert.Equal(t, "991-12345-67", inv.LeitwegID)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), inv.DueDate)
	assert.Equal(t, model.FormatXRechnung, inv.Format)
}

func TestSeedFromProduct(t *testing.T) {
	product := &model.Product{
		ID:        9,
		SKU:       "DEV-001",
		Name:      "Softwareentwicklung",
		Unit:      model.UnitHour,
		UnitPrice: money.MustFromString("95.00"),
		VATRate:   money.MustFromString("19.00"),
	}

	var item model.InvoiceItem
	fields.SeedFromProduct(&item, product)

	assert.Equal(t, int64(9), *item.ProductID)
	assert.Equal(t, "Softwareentwicklung", item.Description)
	assert.Equal(t, model.UnitHour, item.Unit)
	assert.True(t, item.UnitPrice.Equal(money.MustFromString("95.00")))
	assert.True(t, item.VATRate.Equal(money.MustFromString("19.00")))
}

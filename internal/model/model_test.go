package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"draft", "final", "sent", "paid", "cancelled"} {
		status, err := model.ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, model.Status(s), status)
	}
}

func TestParseStatus_Unknown(t *testing.T) {
	_, err := model.ParseStatus("archived")
	require.Error(t, err)

	var dataErr *model.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "status", dataErr.Field)
}

func TestParseFormat(t *testing.T) {
	f, err := model.ParseFormat("xrechnung")
	require.NoError(t, err)
	assert.Equal(t, model.FormatXRechnung, f)

	f, err = model.ParseFormat("zugferd")
	require.NoError(t, err)
	assert.Equal(t, model.FormatZUGFeRD, f)

	_, err = model.ParseFormat("facturx")
	require.Error(t, err)
}

func TestParseUnit(t *testing.T) {
	units := []string{"HUR", "DAY", "MON", "C62", "H87", "KGM", "MTR", "LTR"}
	for _, u := range units {
		unit, err := model.ParseUnit(u)
		require.NoError(t, err)
		assert.Equal(t, model.Unit(u), unit)
	}

	_, err := model.ParseUnit("XYZ")
	require.Error(t, err)
}

func TestNewDraft(t *testing.T) {
	inv := model.NewDraft(7)

	assert.Equal(t, model.StatusDraft, inv.Status)
	assert.Equal(t, model.FormatZUGFeRD, inv.Format)
	assert.Equal(t, int64(7), inv.CustomerID)
	assert.NotEmpty(t, inv.ClientRef)
	assert.Zero(t, inv.ID)
}

func TestNewDraft_UniqueClientRef(t *testing.T) {
	a := model.NewDraft(1)
	b := model.NewDraft(1)
	assert.NotEqual(t, a.ClientRef, b.ClientRef)
}

func TestInvoice_Clone(t *testing.T) {
	inv := model.NewDraft(1)
	inv.Items = []model.InvoiceItem{
		{Position: 1, Description: "Beratung", Quantity: money.MustFromString("2"), UnitPrice: money.MustFromString("100.00")},
	}

	cp := inv.Clone()
	cp.Items[0].Description = "changed"
	cp.Items = append(cp.Items, model.InvoiceItem{Position: 2})

	assert.Equal(t, "Beratung", inv.Items[0].Description)
	assert.Len(t, inv.Items, 1)
}

func TestInvalidStateError(t *testing.T) {
	err := model.NewInvalidStateError("download_pdf", model.StatusDraft)
	assert.Contains(t, err.Error(), "download_pdf")
	assert.Contains(t, err.Error(), "draft")
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := assert.AnError
	err := model.NewUpstreamError("CreateInvoice", cause)

	require.Contains(t, err.Error(), "CreateInvoice")
	require.ErrorIs(t, err, cause)
}

func TestPartialCreationError(t *testing.T) {
	err := &model.PartialCreationError{
		InvoiceID: 42,
		Created:   []int{3, 1},
		Failed:    []model.ItemFailure{{Position: 2, Err: assert.AnError}},
	}
	err.Normalize()

	assert.Equal(t, []int{1, 3}, err.Created)
	assert.Contains(t, err.Error(), "invoice 42")
	assert.Contains(t, err.Error(), "2 of 3 items")
	assert.Contains(t, err.Error(), "failed positions: 2")
}

func TestPartialCreationError_Compensated(t *testing.T) {
	err := &model.PartialCreationError{
		InvoiceID:     42,
		Created:       []int{1},
		Failed:        []model.ItemFailure{{Position: 2, Err: assert.AnError}},
		HeaderDeleted: true,
	}
	assert.Contains(t, err.Error(), "header deleted")
}

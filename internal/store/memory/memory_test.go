package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/money"
	"github.com/rezonia/rechnung/internal/store"
	"github.com/rezonia/rechnung/internal/store/memory"
)

func TestCreateInvoice_AssignsID(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	created, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, model.StatusDraft, created.Status)

	second, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestGetInvoice_NotFound(t *testing.T) {
	s := memory.NewStore()

	_, err := s.GetInvoice(context.Background(), 99)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestItems_OrderedByPosition(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	inv, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)

	// insert out of client order, as concurrent dispatch would
	for _, pos := range []int{3, 1, 2} {
		_, err := s.CreateInvoiceItem(ctx, inv.ID, &model.InvoiceItem{
			Position:    pos,
			Description: "Position",
			Quantity:    money.MustFromString("1"),
			UnitPrice:   money.MustFromString("10.00"),
			VATRate:     money.MustFromString("19.00"),
		})
		require.NoError(t, err)
	}

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, 1, got.Items[0].Position)
	assert.Equal(t, 2, got.Items[1].Position)
	assert.Equal(t, 3, got.Items[2].Position)
}

func TestCreateInvoiceItem_UnknownInvoice(t *testing.T) {
	s := memory.NewStore()

	_, err := s.CreateInvoiceItem(context.Background(), 42, &model.InvoiceItem{Position: 1})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateInvoice_KeepsItems(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	inv, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)
	_, err = s.CreateInvoiceItem(ctx, inv.ID, &model.InvoiceItem{Position: 1, Description: "A"})
	require.NoError(t, err)

	header := inv.Clone()
	header.Notes = "updated"
	updated, err := s.UpdateInvoice(ctx, inv.ID, header)
	require.NoError(t, err)

	assert.Equal(t, "updated", updated.Notes)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "A", updated.Items[0].Description)
}

func TestUpdateAndDeleteItem(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	inv, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)
	created, err := s.CreateInvoiceItem(ctx, inv.ID, &model.InvoiceItem{Position: 1, Description: "A"})
	require.NoError(t, err)

	created.Description = "B"
	updated, err := s.UpdateInvoiceItem(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Description)

	got, err := s.GetInvoiceItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Description)

	require.NoError(t, s.DeleteInvoiceItem(ctx, created.ID))
	_, err = s.GetInvoiceItem(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteInvoice(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	inv, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)

	require.NoError(t, s.DeleteInvoice(ctx, inv.ID))
	require.ErrorIs(t, s.DeleteInvoice(ctx, inv.ID), store.ErrNotFound)
}

func TestNextInvoiceNumber(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	n1, err := s.NextInvoiceNumber(ctx, 2025)
	require.NoError(t, err)
	n2, err := s.NextInvoiceNumber(ctx, 2025)
	require.NoError(t, err)
	n3, err := s.NextInvoiceNumber(ctx, 2026)
	require.NoError(t, err)

	assert.Equal(t, "RE-2025-001", n1)
	assert.Equal(t, "RE-2025-002", n2)
	assert.Equal(t, "RE-2026-001", n3)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	s.PutCustomer(&model.Customer{ID: 3, DisplayName: "Muster GmbH", PaymentTermsDays: 30})
	s.PutProduct(&model.Product{ID: 9, Name: "Beratung", Unit: model.UnitHour})

	c, err := s.GetCustomer(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Muster GmbH", c.DisplayName)

	p, err := s.GetProduct(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Beratung", p.Name)

	_, err = s.GetCustomer(ctx, 4)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSnapshot_Isolated(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	inv, err := s.CreateInvoice(ctx, model.NewDraft(1))
	require.NoError(t, err)
	_, err = s.CreateInvoiceItem(ctx, inv.ID, &model.InvoiceItem{Position: 1, Description: "A"})
	require.NoError(t, err)

	got, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	got.Items[0].Description = "mutated"

	again, err := s.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Items[0].Description)
}

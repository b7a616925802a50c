// Package engine wires the computation, lifecycle, and coordination
// components over the collaborator contracts. Every operation enforces
// its lifecycle guard here, so HTTP handlers, CLI commands, and tests all
// get the same protection.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/rechnung/internal/calc"
	"github.com/rezonia/rechnung/internal/coordinator"
	"github.com/rezonia/rechnung/internal/fields"
	"github.com/rezonia/rechnung/internal/lifecycle"
	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/store"
)

// Engine is the invoice computation and lifecycle-control engine.
type Engine struct {
	store store.InvoiceStore
	dir   store.DirectoryStore
	docs  store.DocumentService
	coord *coordinator.Coordinator
	log   zerolog.Logger
	now   func() time.Time

	compensate bool
}

// Option configures the engine
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithHeaderCompensation propagates to the creation coordinator; see
// coordinator.WithHeaderCompensation.
func WithHeaderCompensation() Option {
	return func(e *Engine) {
		e.compensate = true
	}
}

// New creates an engine over the given collaborators.
func New(st store.InvoiceStore, dir store.DirectoryStore, docs store.DocumentService, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		dir:   dir,
		docs:  docs,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	copts := []coordinator.Option{coordinator.WithLogger(e.log)}
	if e.compensate {
		copts = append(copts, coordinator.WithHeaderCompensation())
	}
	e.coord = coordinator.New(st, copts...)
	return e
}

// Preview computes live totals for unsaved items.
func (e *Engine) Preview(items []model.InvoiceItem) (*coordinator.Preview, error) {
	return e.coord.Preview(items)
}

// Totals recomputes an invoice's aggregates from its items.
func (e *Engine) Totals(inv *model.Invoice) (calc.Totals, error) {
	return calc.ComputeTotals(inv.Items)
}

// CreateDraft persists a new draft invoice with its items. Derived fields
// (due date, format, routing id) are seeded from the customer when the
// header does not set them.
func (e *Engine) CreateDraft(ctx context.Context, header *model.Invoice, items []model.InvoiceItem) (*model.Invoice, error) {
	customer, err := e.customer(ctx, header.CustomerID)
	if err != nil {
		return nil, err
	}

	header.Status = model.StatusDraft
	if header.InvoiceDate.IsZero() {
		header.InvoiceDate = fields.DateOnly(e.now())
	}
	if header.DueDate.IsZero() {
		header.DueDate = fields.DueDate(header.InvoiceDate, customer.PaymentTermsDays)
	}
	if header.LeitwegID == "" {
		header.LeitwegID = customer.LeitwegID
	}
	header.Format = fields.ResolveFormat(customer, header.Format)

	for i := range items {
		if err := e.seedItem(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return e.coord.Create(ctx, header, items)
}

// seedItem fills catalog values for lines that reference a product
// without carrying their own description.
func (e *Engine) seedItem(ctx context.Context, item *model.InvoiceItem) error {
	if item.ProductID == nil || item.Description != "" {
		return nil
	}
	product, err := e.Product(ctx, *item.ProductID)
	if err != nil {
		return err
	}
	qty := item.Quantity
	fields.SeedFromProduct(item, product)
	item.Quantity = qty
	return nil
}

// UpdateHeader replaces header fields. Permitted only while draft.
func (e *Engine) UpdateHeader(ctx context.Context, id int64, header *model.Invoice) (*model.Invoice, error) {
	inv, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.NewMachine(inv.Status).EnsureEditable(); err != nil {
		return nil, err
	}

	header.Status = inv.Status
	header.Number = inv.Number
	updated, err := e.store.UpdateInvoice(ctx, id, header)
	if err != nil {
		return nil, model.NewUpstreamError("UpdateInvoice", err)
	}
	return updated, nil
}

// Get returns one invoice.
func (e *Engine) Get(ctx context.Context, id int64) (*model.Invoice, error) {
	return e.get(ctx, id)
}

// List returns all invoices.
func (e *Engine) List(ctx context.Context) ([]*model.Invoice, error) {
	invs, err := e.store.ListInvoices(ctx)
	if err != nil {
		return nil, model.NewUpstreamError("ListInvoices", err)
	}
	return invs, nil
}

// Delete removes a draft invoice. Non-drafts are locked records.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	inv, err := e.get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != model.StatusDraft {
		return model.NewInvalidStateError(lifecycle.ActionDelete, inv.Status)
	}
	if err := e.store.DeleteInvoice(ctx, id); err != nil {
		return model.NewUpstreamError("DeleteInvoice", err)
	}
	return nil
}

// AddItem appends a line to a draft invoice.
func (e *Engine) AddItem(ctx context.Context, invoiceID int64, item *model.InvoiceItem) (*model.InvoiceItem, error) {
	inv, err := e.get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.NewMachine(inv.Status).EnsureEditable(); err != nil {
		return nil, err
	}
	if err := e.seedItem(ctx, item); err != nil {
		return nil, err
	}
	if err := calc.Validate([]model.InvoiceItem{*item}); err != nil {
		return nil, err
	}

	if item.Position == 0 {
		item.Position = len(inv.Items) + 1
	}
	saved, err := e.store.CreateInvoiceItem(ctx, invoiceID, item)
	if err != nil {
		return nil, model.NewUpstreamError("CreateInvoiceItem", err)
	}
	return saved, nil
}

// UpdateItem edits a line of a draft invoice.
func (e *Engine) UpdateItem(ctx context.Context, itemID int64, item *model.InvoiceItem) (*model.InvoiceItem, error) {
	existing, err := e.store.GetInvoiceItem(ctx, itemID)
	if err != nil {
		return nil, e.wrapLookup("GetInvoiceItem", err)
	}
	inv, err := e.get(ctx, existing.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.NewMachine(inv.Status).EnsureEditable(); err != nil {
		return nil, err
	}
	if err := calc.Validate([]model.InvoiceItem{*item}); err != nil {
		return nil, err
	}

	saved, err := e.store.UpdateInvoiceItem(ctx, itemID, item)
	if err != nil {
		return nil, model.NewUpstreamError("UpdateInvoiceItem", err)
	}
	return saved, nil
}

// RemoveItem deletes a line of a draft invoice.
func (e *Engine) RemoveItem(ctx context.Context, itemID int64) error {
	existing, err := e.store.GetInvoiceItem(ctx, itemID)
	if err != nil {
		return e.wrapLookup("GetInvoiceItem", err)
	}
	inv, err := e.get(ctx, existing.InvoiceID)
	if err != nil {
		return err
	}
	if err := lifecycle.NewMachine(inv.Status).EnsureEditable(); err != nil {
		return err
	}
	if err := e.store.DeleteInvoiceItem(ctx, itemID); err != nil {
		return model.NewUpstreamError("DeleteInvoiceItem", err)
	}
	return nil
}

// Finalize moves a draft to final, assigning the definitive invoice
// number and locking its content.
func (e *Engine) Finalize(ctx context.Context, id int64) (*model.Invoice, error) {
	inv, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	machine := lifecycle.NewMachine(inv.Status)
	if err := machine.Finalize(len(inv.Items)); err != nil {
		return nil, err
	}
	if err := validateHeader(inv); err != nil {
		return nil, err
	}
	// computation errors must surface before the status write
	if _, err := calc.ComputeTotals(inv.Items); err != nil {
		return nil, err
	}

	number, err := e.store.NextInvoiceNumber(ctx, inv.InvoiceDate.Year())
	if err != nil {
		return nil, model.NewUpstreamError("NextInvoiceNumber", err)
	}
	inv.Number = number
	inv.Status = machine.Status()

	updated, err := e.store.UpdateInvoice(ctx, id, inv)
	if err != nil {
		return nil, model.NewUpstreamError("UpdateInvoice", err)
	}
	e.log.Info().Int64("invoice_id", id).Str("number", number).Msg("invoice finalized")
	return updated, nil
}

// MarkSent records that the final invoice left the house.
func (e *Engine) MarkSent(ctx context.Context, id int64) (*model.Invoice, error) {
	return e.transition(ctx, id, func(m *lifecycle.Machine) error { return m.MarkSent() })
}

// MarkPaid records payment for a sent invoice.
func (e *Engine) MarkPaid(ctx context.Context, id int64) (*model.Invoice, error) {
	return e.transition(ctx, id, func(m *lifecycle.Machine) error { return m.MarkPaid() })
}

// Cancel voids any non-terminal invoice.
func (e *Engine) Cancel(ctx context.Context, id int64) (*model.Invoice, error) {
	return e.transition(ctx, id, func(m *lifecycle.Machine) error { return m.Cancel() })
}

// Duplicate creates an independent draft copy of an invoice, from any
// state, without mutating the source.
func (e *Engine) Duplicate(ctx context.Context, id int64) (*model.Invoice, error) {
	src, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := e.customer(ctx, src.CustomerID)
	if err != nil {
		return nil, err
	}

	cp := lifecycle.Duplicate(src, customer, e.now())
	items := cp.Items
	cp.Items = nil
	return e.coord.Create(ctx, cp, items)
}

// DownloadXML returns the rendered XML document. Drafts have no document.
func (e *Engine) DownloadXML(ctx context.Context, id int64) ([]byte, error) {
	inv, err := e.documentReady(ctx, id, lifecycle.ActionDownloadXML)
	if err != nil {
		return nil, err
	}
	return e.docs.RenderXML(ctx, inv)
}

// DownloadPDF returns the rendered PDF document. Drafts have no document.
func (e *Engine) DownloadPDF(ctx context.Context, id int64) ([]byte, error) {
	inv, err := e.documentReady(ctx, id, lifecycle.ActionDownloadPDF)
	if err != nil {
		return nil, err
	}
	return e.docs.RenderPDF(ctx, inv)
}

// SendEmail delivers the invoice document by mail.
func (e *Engine) SendEmail(ctx context.Context, id int64, address string) (*store.EmailResult, error) {
	inv, err := e.documentReady(ctx, id, lifecycle.ActionSendEmail)
	if err != nil {
		return nil, err
	}
	return e.docs.SendEmail(ctx, inv, address)
}

// Validate runs the compliance validation for a non-draft invoice.
func (e *Engine) Validate(ctx context.Context, id int64) (*store.ValidationResult, error) {
	inv, err := e.documentReady(ctx, id, lifecycle.ActionValidate)
	if err != nil {
		return nil, err
	}
	return e.docs.Validate(ctx, inv)
}

// Customer resolves a customer reference.
func (e *Engine) Customer(ctx context.Context, id int64) (*model.Customer, error) {
	return e.customer(ctx, id)
}

// Product resolves a product reference.
func (e *Engine) Product(ctx context.Context, id int64) (*model.Product, error) {
	p, err := e.dir.GetProduct(ctx, id)
	if err != nil {
		return nil, e.wrapLookup("GetProduct", err)
	}
	return p, nil
}

func (e *Engine) transition(ctx context.Context, id int64, apply func(*lifecycle.Machine) error) (*model.Invoice, error) {
	inv, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	machine := lifecycle.NewMachine(inv.Status)
	if err := apply(machine); err != nil {
		return nil, err
	}

	inv.Status = machine.Status()
	updated, err := e.store.UpdateInvoice(ctx, id, inv)
	if err != nil {
		return nil, model.NewUpstreamError("UpdateInvoice", err)
	}
	e.log.Info().Int64("invoice_id", id).Str("status", string(updated.Status)).Msg("status changed")
	return updated, nil
}

func (e *Engine) documentReady(ctx context.Context, id int64, action string) (*model.Invoice, error) {
	inv, err := e.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.NewMachine(inv.Status).EnsureDocumentReady(action); err != nil {
		return nil, err
	}
	return inv, nil
}

func (e *Engine) get(ctx context.Context, id int64) (*model.Invoice, error) {
	inv, err := e.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, e.wrapLookup("GetInvoice", err)
	}
	// unrecognized persisted values are a data error, not a default
	if _, err := model.ParseStatus(string(inv.Status)); err != nil {
		return nil, err
	}
	if _, err := model.ParseFormat(string(inv.Format)); err != nil {
		return nil, err
	}
	return inv, nil
}

func (e *Engine) customer(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := e.dir.GetCustomer(ctx, id)
	if err != nil {
		return nil, e.wrapLookup("GetCustomer", err)
	}
	return c, nil
}

func (e *Engine) wrapLookup(op string, err error) error {
	if err == store.ErrNotFound {
		return err
	}
	return model.NewUpstreamError(op, err)
}

func validateHeader(inv *model.Invoice) error {
	if inv.CustomerID == 0 {
		return model.NewDataError("customer", inv.CustomerID)
	}
	if inv.InvoiceDate.IsZero() {
		return model.NewDataError("invoice_date", "")
	}
	if inv.DueDate.IsZero() {
		return model.NewDataError("due_date", "")
	}
	if inv.Format == model.FormatXRechnung && inv.LeitwegID == "" {
		return model.NewDataError("leitweg_id", "")
	}
	return nil
}

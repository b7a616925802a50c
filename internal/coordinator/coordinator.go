// Package coordinator orchestrates the two-phase creation of an invoice
// header and its line items against the persistence collaborator.
package coordinator

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/rechnung/internal/calc"
	"github.com/rezonia/rechnung/internal/model"
)

// Writer is the slice of the persistence contract the coordinator needs.
type Writer interface {
	CreateInvoice(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)
	CreateInvoiceItem(ctx context.Context, invoiceID int64, item *model.InvoiceItem) (*model.InvoiceItem, error)
	DeleteInvoice(ctx context.Context, id int64) error
}

// Coordinator persists the header first, then dispatches one item-creation
// request per line without waiting for one another. Completions may arrive
// in any order; the write is done when all of them have settled. Each item
// carries an explicit position, so persisted order never depends on
// arrival order.
type Coordinator struct {
	store      Writer
	compensate bool
	log        zerolog.Logger
}

// Option configures the coordinator
type Option func(*Coordinator)

// WithHeaderCompensation makes the coordinator delete the header when any
// item write fails, approximating an all-or-nothing transaction. Without
// it, the header and the items that made it stay persisted and the
// returned PartialCreationError reports the survivors.
func WithHeaderCompensation() Option {
	return func(c *Coordinator) {
		c.compensate = true
	}
}

// WithLogger sets the coordinator logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// New creates a coordinator over the given writer.
func New(store Writer, opts ...Option) *Coordinator {
	c := &Coordinator{
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preview bundles the client-side totals shown while the invoice is being
// edited, before anything is persisted. Values are exact; callers round
// for display.
type Preview struct {
	Totals  calc.Totals
	Summary []model.VatSummaryEntry
}

// Preview computes live totals and the VAT summary for unsaved items.
func (c *Coordinator) Preview(items []model.InvoiceItem) (*Preview, error) {
	totals, err := calc.ComputeTotals(items)
	if err != nil {
		return nil, err
	}
	summary, err := calc.VATSummary(items)
	if err != nil {
		return nil, err
	}
	return &Preview{Totals: totals, Summary: summary}, nil
}

type itemResult struct {
	position int
	item     *model.InvoiceItem
	err      error
}

// Create persists the header, then all items. Malformed numeric input is
// rejected before the first persistence call. On item failure the header
// is not rolled back unless header compensation is enabled; either way the
// error reports which positions made it.
func (c *Coordinator) Create(ctx context.Context, header *model.Invoice, items []model.InvoiceItem) (*model.Invoice, error) {
	if err := calc.Validate(items); err != nil {
		return nil, err
	}

	start := time.Now()
	created, err := c.store.CreateInvoice(ctx, header)
	if err != nil {
		return nil, model.NewUpstreamError("CreateInvoice", err)
	}
	c.log.Debug().Int64("invoice_id", created.ID).Int("items", len(items)).Msg("header persisted, dispatching items")

	// Dispatch all item writes at once; the header id is known, nothing
	// else orders them.
	results := make(chan itemResult, len(items))
	for i := range items {
		item := items[i]
		item.Position = i + 1
		go func(item model.InvoiceItem) {
			saved, err := c.store.CreateInvoiceItem(ctx, created.ID, &item)
			results <- itemResult{position: item.Position, item: saved, err: err}
		}(item)
	}

	var saved []model.InvoiceItem
	var failed []model.ItemFailure
	var createdPositions []int
	for range items {
		res := <-results
		if res.err != nil {
			failed = append(failed, model.ItemFailure{Position: res.position, Err: res.err})
			continue
		}
		saved = append(saved, *res.item)
		createdPositions = append(createdPositions, res.position)
	}

	if len(failed) > 0 {
		perr := &model.PartialCreationError{
			InvoiceID: created.ID,
			Created:   createdPositions,
			Failed:    failed,
		}
		if c.compensate {
			if derr := c.store.DeleteInvoice(ctx, created.ID); derr != nil {
				perr.CompensationErr = derr
				c.log.Error().Err(derr).Int64("invoice_id", created.ID).Msg("header compensation failed")
			} else {
				perr.HeaderDeleted = true
			}
		}
		perr.Normalize()
		c.log.Warn().Err(perr).Int64("invoice_id", created.ID).Msg("partial creation")
		return nil, perr
	}

	sort.Slice(saved, func(i, j int) bool { return saved[i].Position < saved[j].Position })
	created.Items = saved
	c.log.Debug().Int64("invoice_id", created.ID).Dur("elapsed", time.Since(start)).Msg("invoice created")
	return created, nil
}

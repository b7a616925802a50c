// Package memory is an in-memory implementation of the persistence
// contracts, used by the HTTP server and by tests. Ids are assigned
// server-side and items are kept ordered by their explicit position, so
// persisted order never depends on request arrival order.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rezonia/rechnung/internal/model"
	"github.com/rezonia/rechnung/internal/store"
)

// Store holds invoices, customers, and products in process memory.
// The engine itself is single-threaded per user action, but the HTTP
// surface is not, so access is mutex-guarded.
type Store struct {
	mu sync.Mutex

	invoices  map[int64]*model.Invoice
	customers map[int64]*model.Customer
	products  map[int64]*model.Product

	invoiceSeq int64
	itemSeq    int64
	numberSeq  map[int]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		invoices:  make(map[int64]*model.Invoice),
		customers: make(map[int64]*model.Customer),
		products:  make(map[int64]*model.Product),
		numberSeq: make(map[int]int),
	}
}

var (
	_ store.InvoiceStore   = (*Store)(nil)
	_ store.DirectoryStore = (*Store)(nil)
)

// CreateInvoice assigns an id and persists a copy of the header.
func (s *Store) CreateInvoice(_ context.Context, inv *model.Invoice) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoiceSeq++
	cp := inv.Clone()
	cp.ID = s.invoiceSeq
	cp.Items = nil
	if cp.Status == "" {
		cp.Status = model.StatusDraft
	}
	s.invoices[cp.ID] = cp
	return cp.Clone(), nil
}

// UpdateInvoice replaces the header fields of an existing invoice. Items
// are managed through the item operations and are left untouched.
func (s *Store) UpdateInvoice(_ context.Context, id int64, inv *model.Invoice) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	cp := inv.Clone()
	cp.ID = id
	cp.Items = existing.Items
	s.invoices[id] = cp
	return s.snapshot(cp), nil
}

// GetInvoice returns a copy with items ordered by position.
func (s *Store) GetInvoice(_ context.Context, id int64) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.snapshot(inv), nil
}

// DeleteInvoice removes the invoice and, implicitly, its items.
func (s *Store) DeleteInvoice(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

// ListInvoices returns all invoices ordered by id.
func (s *Store) ListInvoices(_ context.Context) ([]*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, s.snapshot(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateInvoiceItem attaches an item to its invoice and assigns an id.
func (s *Store) CreateInvoiceItem(_ context.Context, invoiceID int64, item *model.InvoiceItem) (*model.InvoiceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, store.ErrNotFound
	}

	s.itemSeq++
	cp := *item
	cp.ID = s.itemSeq
	cp.InvoiceID = invoiceID
	inv.Items = append(inv.Items, cp)
	return &cp, nil
}

// UpdateInvoiceItem replaces an existing item in place.
func (s *Store) UpdateInvoiceItem(_ context.Context, id int64, item *model.InvoiceItem) (*model.InvoiceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invoices {
		for i := range inv.Items {
			if inv.Items[i].ID == id {
				cp := *item
				cp.ID = id
				cp.InvoiceID = inv.ID
				inv.Items[i] = cp
				return &cp, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

// DeleteInvoiceItem removes an item from its invoice.
func (s *Store) DeleteInvoiceItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invoices {
		for i := range inv.Items {
			if inv.Items[i].ID == id {
				inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
				return nil
			}
		}
	}
	return store.ErrNotFound
}

// GetInvoiceItem looks up a single item by id.
func (s *Store) GetInvoiceItem(_ context.Context, id int64) (*model.InvoiceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invoices {
		for i := range inv.Items {
			if inv.Items[i].ID == id {
				cp := inv.Items[i]
				return &cp, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

// NextInvoiceNumber hands out RE-<year>-<seq>, sequential per year.
func (s *Store) NextInvoiceNumber(_ context.Context, year int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.numberSeq[year]++
	return fmt.Sprintf("RE-%d-%03d", year, s.numberSeq[year]), nil
}

// GetCustomer implements store.DirectoryStore.
func (s *Store) GetCustomer(_ context.Context, id int64) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// GetProduct implements store.DirectoryStore.
func (s *Store) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// PutCustomer seeds a customer record.
func (s *Store) PutCustomer(c *model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[cp.ID] = &cp
}

// PutProduct seeds a product record.
func (s *Store) PutProduct(p *model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[cp.ID] = &cp
}

// snapshot copies an invoice with items sorted by position. Callers must
// hold the mutex.
func (s *Store) snapshot(inv *model.Invoice) *model.Invoice {
	cp := inv.Clone()
	sort.SliceStable(cp.Items, func(i, j int) bool { return cp.Items[i].Position < cp.Items[j].Position })
	return cp
}

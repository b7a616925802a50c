// Package lifecycle enforces the invoice status state machine.
//
// Every guard lives here, not in the UI or HTTP layer, so programmatic
// callers get the same protection as interactive ones.
package lifecycle

import (
	"time"

	"github.com/rezonia/rechnung/internal/fields"
	"github.com/rezonia/rechnung/internal/model"
)

// Action names used in state errors and logs.
const (
	ActionFinalize    = "finalize"
	ActionMarkSent    = "mark_sent"
	ActionMarkPaid    = "mark_paid"
	ActionCancel      = "cancel"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionDownloadPDF = "download_pdf"
	ActionDownloadXML = "download_xml"
	ActionSendEmail   = "send_email"
	ActionValidate    = "validate"
)

// Machine holds an invoice's lifecycle status and validates transitions.
// draft is initial; paid and cancelled are terminal.
type Machine struct {
	status model.Status
}

// NewMachine creates a machine positioned at the given status.
func NewMachine(status model.Status) *Machine {
	return &Machine{status: status}
}

// Status returns the current status.
func (m *Machine) Status() model.Status {
	return m.status
}

// IsTerminal reports whether no further transition is possible.
func (m *Machine) IsTerminal() bool {
	return m.status == model.StatusPaid || m.status == model.StatusCancelled
}

// Finalize moves draft -> final. The item collection must be non-empty:
// finalization assigns the definitive invoice number and locks content.
// Repeated calls fail, finalize succeeds exactly once.
func (m *Machine) Finalize(itemCount int) error {
	if m.status != model.StatusDraft {
		return model.NewInvalidStateError(ActionFinalize, m.status)
	}
	if itemCount == 0 {
		return model.NewInvalidStateError(ActionFinalize+" without items", m.status)
	}
	m.status = model.StatusFinal
	return nil
}

// MarkSent moves final -> sent.
func (m *Machine) MarkSent() error {
	if m.status != model.StatusFinal {
		return model.NewInvalidStateError(ActionMarkSent, m.status)
	}
	m.status = model.StatusSent
	return nil
}

// MarkPaid moves sent -> paid.
func (m *Machine) MarkPaid() error {
	if m.status != model.StatusSent {
		return model.NewInvalidStateError(ActionMarkPaid, m.status)
	}
	m.status = model.StatusPaid
	return nil
}

// Cancel moves any non-terminal status to cancelled. paid is terminal, so
// a paid invoice cannot be cancelled.
func (m *Machine) Cancel() error {
	switch m.status {
	case model.StatusDraft, model.StatusFinal, model.StatusSent:
		m.status = model.StatusCancelled
		return nil
	}
	return model.NewInvalidStateError(ActionCancel, m.status)
}

// EnsureEditable allows header and item mutation only while draft.
func (m *Machine) EnsureEditable() error {
	if m.status != model.StatusDraft {
		return model.NewInvalidStateError(ActionUpdate, m.status)
	}
	return nil
}

// EnsureDocumentReady guards document actions (download, email, validate):
// a compliant document does not exist while the invoice is still a draft.
func (m *Machine) EnsureDocumentReady(action string) error {
	if m.status == model.StatusDraft {
		return model.NewInvalidStateError(action, m.status)
	}
	return nil
}

// Duplicate produces an independent draft copy of src without mutating it.
// Allowed from any state. Dates are reseeded from today and the customer's
// payment terms; the copy has no id and no invoice number yet.
func Duplicate(src *model.Invoice, customer *model.Customer, today time.Time) *model.Invoice {
	cp := src.Clone()
	cp.ID = 0
	cp.Number = ""
	cp.ClientRef = ""
	cp.Status = model.StatusDraft
	cp.InvoiceDate = fields.DateOnly(today)
	cp.DueDate = fields.DueDate(today, customer.PaymentTermsDays)
	for i := range cp.Items {
		cp.Items[i].ID = 0
		cp.Items[i].InvoiceID = 0
	}
	return cp
}

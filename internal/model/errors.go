package model

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidStateError is returned when an action is attempted in a lifecycle
// state that forbids it.
type InvalidStateError struct {
	Action string
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("action %q is not allowed while invoice is %q", e.Action, e.Status)
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(action string, status Status) *InvalidStateError {
	return &InvalidStateError{Action: action, Status: status}
}

// DataError represents an unrecognized enumerated value coming from
// persisted or external data.
type DataError struct {
	Field string
	Value interface{}
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}

// NewDataError creates a new data error
func NewDataError(field string, value interface{}) *DataError {
	return &DataError{Field: field, Value: value}
}

// UpstreamError wraps a failed or unreachable collaborator call.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call %s failed: %v", e.Op, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(op string, cause error) *UpstreamError {
	return &UpstreamError{Op: op, Cause: cause}
}

// ItemFailure records a single failed line-item write.
type ItemFailure struct {
	Position int
	Err      error
}

// PartialCreationError reports a header that was persisted while one or
// more of its line-item writes failed. Created and Failed carry the
// 1-based positions so the caller can reconcile manually; the engine does
// not auto-retry.
type PartialCreationError struct {
	InvoiceID int64
	Created   []int
	Failed    []ItemFailure

	// HeaderDeleted is true when the coordinator compensated by deleting
	// the header; CompensationErr holds the failure when even that failed.
	HeaderDeleted   bool
	CompensationErr error
}

func (e *PartialCreationError) Error() string {
	failed := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		failed[i] = fmt.Sprintf("%d", f.Position)
	}
	msg := fmt.Sprintf("invoice %d created with %d of %d items; failed positions: %s",
		e.InvoiceID, len(e.Created), len(e.Created)+len(e.Failed), strings.Join(failed, ", "))
	if e.HeaderDeleted {
		msg += " (header deleted)"
	} else if e.CompensationErr != nil {
		msg += fmt.Sprintf(" (header deletion failed: %v)", e.CompensationErr)
	}
	return msg
}

// Normalize sorts the position lists so reports are deterministic
// regardless of completion order.
func (e *PartialCreationError) Normalize() {
	sort.Ints(e.Created)
	sort.Slice(e.Failed, func(i, j int) bool { return e.Failed[i].Position < e.Failed[j].Position })
}

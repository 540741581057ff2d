// Package policy provides default implementations of the collaborators the
// mutation validators consult: book closure, e-invoicing applicability,
// HSN/SAC catalogue, tax rate resolution, reference number format and the
// item flow guard between a note and its source document.
//
// Each type is a plain value configured up front and safe for concurrent use.
package policy

import (
	"context"
	"time"

	"github.com/robinvdvleuten/creditnote/mutation"
	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/validation"
)

// BookClosure locks notes dated inside closed accounting periods.
type BookClosure struct {
	// ClosedThrough is the last instant of the most recently closed period.
	// The zero value closes nothing.
	ClosedThrough time.Time
}

func (b BookClosure) closed(t time.Time) bool {
	return !b.ClosedThrough.IsZero() && !t.After(b.ClosedThrough)
}

// EditCancelAllowed reports whether field may change from old to updated.
//
// A note dated inside a closed period is locked once it has been sent to the
// ERP; an unknown sent state counts as sent. No note may be moved into a
// closed period. Fields other than the note date are never locked.
func (b BookClosure) EditCancelAllowed(old, updated *note.Note, field string) bool {
	if field != mutation.NoteDateField {
		return true
	}
	if b.closed(old.NoteDate) && (old.IsSentToMSD == nil || *old.IsSentToMSD) {
		return false
	}
	if !updated.NoteDate.Equal(old.NoteDate) && b.closed(updated.NoteDate) {
		return false
	}
	return true
}

// B2C marks notes issued to unregistered customers.
const B2C = "B2C"

// EInvoicing decides e-invoicing applicability from the note date, the sub
// type and a list of exempt customers.
type EInvoicing struct {
	EffectiveFrom   time.Time
	ExemptCustomers []string
}

// Applicable reports whether n must be registered for e-invoicing.
func (e EInvoicing) Applicable(n *note.Note) bool {
	if n.EInvoiceSubType == B2C {
		return false
	}
	if n.NoteDate.Before(e.EffectiveFrom) {
		return false
	}
	for _, id := range e.ExemptCustomers {
		if id == n.CustomerID {
			return false
		}
	}
	return true
}

// SourceFlow rejects legacy notes raised against new flow source documents.
type SourceFlow struct{}

// ValidateSource returns message as an abort when source uses the new item
// flow and n does not.
func (SourceFlow) ValidateSource(_ context.Context, source mutation.SourceDocument, n *note.Note, message string) error {
	if source.NewFlow && !note.IsNewItemFlow(n.Items) {
		return validation.Abort(message)
	}
	return nil
}

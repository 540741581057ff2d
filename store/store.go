// Package store defines the read-only document lookups validation needs.
//
// Implementations live in the memory and mongo subpackages. Every method is a
// single request; failures are returned to the caller, never retried.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/robinvdvleuten/creditnote/note"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// PaymentFilter selects the finance payments of one note.
type PaymentFilter struct {
	NoteID string
	// ExcludeFailed drops payments in PAYMENT_FAILED status.
	ExcludeFailed bool
}

// Matches reports whether p satisfies the filter.
func (f PaymentFilter) Matches(p note.FinancePayment) bool {
	if p.NoteID != f.NoteID {
		return false
	}
	return !(f.ExcludeFailed && p.Status == note.PaymentFailed)
}

// ReferenceFilter selects the notes whose reference numbers count towards the
// uniqueness of a new reference number: current schema, not draft or
// cancelled, not reversed by a debit note, dated inside [From, To].
type ReferenceFilter struct {
	CustomerID    string
	ExcludeNoteID string
	From          time.Time
	To            time.Time
}

// Matches reports whether n satisfies the filter.
func (f ReferenceFilter) Matches(n *note.Note) bool {
	switch {
	case n.CustomerID != f.CustomerID:
		return false
	case f.ExcludeNoteID != "" && n.ID == f.ExcludeNoteID:
		return false
	case n.SchemaVersion != note.CurrentSchemaVersion:
		return false
	case n.Status == note.StatusDraft || n.Status == note.StatusCancelled:
		return false
	case n.ReversedByDebitNoteID != "":
		return false
	case n.NoteDate.Before(f.From) || n.NoteDate.After(f.To):
		return false
	}
	return true
}

// DocumentStore resolves documents by identifier.
type DocumentStore interface {
	FindNote(ctx context.Context, id string) (*note.Note, error)
	FindFinancePayments(ctx context.Context, filter PaymentFilter) ([]note.FinancePayment, error)
	DistinctReferenceNumbers(ctx context.Context, filter ReferenceFilter) ([]string, error)
	FindCustomer(ctx context.Context, id string) (*note.Customer, error)
}

package mutation

import (
	"context"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/rules"
)

// TaxRateResolver resolves the tax rates mandated for a note's reason.
type TaxRateResolver = rules.TaxRateResolver

// HSNValidator checks the HSN/SAC codes of new and changed items. It returns
// one message per invalid item.
type HSNValidator interface {
	InvalidHSN(ctx context.Context, oldItems, newItems []note.Item) ([]string, error)
}

// BookClosure decides whether a field of a note may still change given the
// accounting periods that have been closed.
type BookClosure interface {
	EditCancelAllowed(old, updated *note.Note, field string) bool
}

// EInvoicing decides whether a note falls under the e-invoicing regulation.
type EInvoicing interface {
	Applicable(n *note.Note) bool
}

// ReferenceFormatValidator checks the format of a customer reference number
// and returns a message, or "" when the format is acceptable.
type ReferenceFormatValidator interface {
	ValidateReference(reference string, customer *note.Customer) string
}

// SourceKind names the document a note is compared with on save.
type SourceKind string

const (
	SourceInvoice   SourceKind = "invoice"
	SourceDebitNote SourceKind = "debit note"
	SourceContract  SourceKind = "contract"
)

// SourceDocument summarises the authoritative document of a save.
type SourceDocument struct {
	Kind    SourceKind
	ID      string
	NewFlow bool
}

// SourceDocumentValidator compares a note with its authoritative source
// document. A mismatch is returned as an error carrying message.
type SourceDocumentValidator interface {
	ValidateSource(ctx context.Context, source SourceDocument, n *note.Note, message string) error
}

package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
	"github.com/robinvdvleuten/creditnote/validation"
)

// ValidateReversalSource checks that source may be used to reverse a debit
// note raised under contractID. Every rule is evaluated; all violations are
// returned together in one *validation.AbortError.
func (s *Service) ValidateReversalSource(ctx context.Context, source *note.Note, contractID string) error {
	c := s.begin(ctx, "reversal", source.ID)

	payments, err := s.store.FindFinancePayments(ctx, store.PaymentFilter{NoteID: source.ID, ExcludeFailed: true})
	if err != nil {
		err = fmt.Errorf("failed to load finance payments of %s: %w", source.ID, err)
		c.end(nil, err)
		return err
	}

	var msgs []string
	if len(payments) > 0 {
		msgs = append(msgs, fmt.Sprintf("Payment is already made for this credit note (%s)", source.NoteNumber))
	}
	if contractID != source.ContractID {
		msgs = append(msgs, fmt.Sprintf("Credit note (%s) used for reversal does not belongs to the same contract", source.NoteNumber))
	}
	if source.Status == note.StatusDraft || source.Status == note.StatusCancelled {
		msgs = append(msgs, fmt.Sprintf("Credit note (%s) can not be use as it is in %s status", source.NoteNumber, source.Status))
	}
	if source.IsReversalLinked() {
		msgs = append(msgs, fmt.Sprintf("Credit note (%s) is already used for reversal", source.NoteNumber))
	}

	if len(msgs) == 0 {
		c.end(nil, nil)
		return nil
	}
	err = validation.Abort(strings.Join(msgs, "\n"))
	c.end(nil, err)
	return err
}

// MandateInput identifies the note checked by ValidateEInvoicingMandate.
type MandateInput struct {
	NoteID string
	// BookClosureOverride waives the mandate for notes whose mapped document
	// was accepted under the previous book closure rule.
	BookClosureOverride bool
}

// ValidateEInvoicingMandate requires a generated IRN before a new flow note
// that falls under e-invoicing can be used for a reversal.
func (s *Service) ValidateEInvoicingMandate(ctx context.Context, in MandateInput) error {
	c := s.begin(ctx, "einvoicing_mandate", in.NoteID)

	n, err := s.store.FindNote(ctx, in.NoteID)
	if errors.Is(err, store.ErrNotFound) {
		err = validation.Abort(fmt.Sprintf("no credit note found for %s", in.NoteID))
	} else if err != nil {
		err = fmt.Errorf("failed to load credit note %s: %w", in.NoteID, err)
	}
	if err != nil {
		c.end(nil, err)
		return err
	}

	mandated := s.eInvoicingApplicable(n) && note.IsNewItemFlow(n.Items) && n.IRNStatus != note.IRNGenerated
	if !mandated || in.BookClosureOverride {
		c.end(nil, nil)
		return nil
	}
	err = validation.Abort(fmt.Sprintf("E-Invoicing is required for reversal of credit note (%s)", n.NoteNumber))
	c.end(nil, err)
	return err
}

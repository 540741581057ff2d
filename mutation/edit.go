package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
	"github.com/robinvdvleuten/creditnote/validation"
)

// Edit and cancel messages.
const (
	CustomerChanged        = "Cannot edit Credit Note as Customer is changed"
	PaidMoreThanNoteValue  = "Cannot edit Credit Note as paid amount is more than note amount"
	NoteDateClosedOnUpdate = "Cannot update as Credit Note Date is not allowed by book closure."
	NoteDateClosedOnCancel = "Cannot cancel as Credit Note Date is not allowed by book closure."
)

// EditInput is the persisted and the proposed state of an edited note.
type EditInput struct {
	Old *note.Note
	New *note.Note
}

// ValidateOnEdit checks an edit of a persisted note. The old note's
// IsSentToMSD flag is loaded from the store when the caller did not provide it.
func (s *Service) ValidateOnEdit(ctx context.Context, in EditInput, preview bool) (validation.Outcome[*note.Note], error) {
	c := s.begin(ctx, "edit", in.Old.ID)

	var acc validation.Accumulator
	if in.Old.ContractCustomerID != in.New.CustomerID {
		acc.Add(CustomerChanged)
	}

	payments, err := s.store.FindFinancePayments(ctx, store.PaymentFilter{NoteID: in.Old.ID})
	if err != nil {
		return fail[*note.Note](c, fmt.Errorf("failed to load finance payments of %s: %w", in.Old.ID, err))
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.PaidAmount).Add(p.ChargesTotal)
	}
	if paid.GreaterThan(in.New.NoteValue) {
		acc.Add(PaidMoreThanNoteValue)
	}

	old, err := s.withSentToMSD(ctx, in.Old)
	if err != nil {
		return fail[*note.Note](c, err)
	}
	if s.eInvoicingApplicable(old) && note.IsNewItemFlow(old.Items) && !s.noteDateAllowed(old, in.New) {
		acc.Add(NoteDateClosedOnUpdate)
	}

	return finish(c, &acc, preview, in.New)
}

// withSentToMSD returns old with IsSentToMSD resolved. The caller's note is
// never modified.
func (s *Service) withSentToMSD(ctx context.Context, old *note.Note) (*note.Note, error) {
	if old.ID == "" || old.IsSentToMSD != nil {
		return old, nil
	}
	stored, err := s.store.FindNote(ctx, old.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load credit note %s: %w", old.ID, err)
	}
	sent := stored != nil && stored.IsSentToMSD != nil && *stored.IsSentToMSD

	resolved := *old
	resolved.IsSentToMSD = &sent
	return &resolved, nil
}

// ValidateOnCancel checks that book closure still allows cancelling n.
func (s *Service) ValidateOnCancel(ctx context.Context, n *note.Note, preview bool) (validation.Outcome[*note.Note], error) {
	c := s.begin(ctx, "cancel", n.ID)

	var acc validation.Accumulator
	if !s.noteDateAllowed(n, n) {
		acc.Add(NoteDateClosedOnCancel)
	}

	return finish(c, &acc, preview, n)
}

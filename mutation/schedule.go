package mutation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/numeric"
	"github.com/robinvdvleuten/creditnote/store"
	"github.com/robinvdvleuten/creditnote/validation"
)

// Payment schedule and amount messages.
const (
	ScheduleTotalMismatch = "Invalid Payment Schedule Data, Sum of payment schedule should match the note value"
	ScheduleBelowPayments = "Payment Schedule not editable with given schedule, as total amount against credit note is less than total finance payment for the credit note"
	ValueAboveAmountDue   = "Credit note value cannot be greater than invoice due amount"
)

// ValidatePaymentSchedule checks that the schedule adds up to the rounded
// value of n, compared at two decimals.
func (s *Service) ValidatePaymentSchedule(ctx context.Context, schedule []note.PaymentSchedule, n *note.Note, preview bool) (validation.Outcome[*note.Note], error) {
	c := s.begin(ctx, "payment_schedule", n.ID)

	total := decimal.Zero
	for _, entry := range schedule {
		total = total.Add(entry.InitialTotalAmount)
	}

	var acc validation.Accumulator
	if !numeric.RoundOff(total, 2).Equal(numeric.RoundOff(n.RoundedOffValue, 2)) {
		acc.Add(ScheduleTotalMismatch)
	}

	return finish(c, &acc, preview, n)
}

// ScheduleEditInput is a replacement payment schedule for a note.
type ScheduleEditInput struct {
	Note     *note.Note
	Schedule []note.PaymentSchedule
	// Payments recorded against the note. Loaded from the store when nil.
	Payments []note.FinancePayment
}

// ValidatePaymentScheduleEditable checks that a new schedule still covers the
// payments recorded against the note (amount plus itemised charges) and that
// the note is not linked to a debit note reversal.
func (s *Service) ValidatePaymentScheduleEditable(ctx context.Context, in ScheduleEditInput, preview bool) (validation.Outcome[[]note.PaymentSchedule], error) {
	n := in.Note
	c := s.begin(ctx, "payment_schedule_edit", n.ID)

	payments := in.Payments
	if payments == nil {
		var err error
		payments, err = s.store.FindFinancePayments(ctx, store.PaymentFilter{NoteID: n.ID})
		if err != nil {
			return fail[[]note.PaymentSchedule](c, fmt.Errorf("failed to load finance payments of %s: %w", n.ID, err))
		}
	}

	scheduled := decimal.Zero
	for _, entry := range in.Schedule {
		if entry.ReferenceID == n.ID {
			scheduled = scheduled.Add(entry.InitialTotalAmount)
		}
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount).Add(p.ChargeAmount())
	}

	var acc validation.Accumulator
	if scheduled.LessThan(paid) {
		acc.Add(ScheduleBelowPayments)
	}
	if n.ReversedDebitNoteID != "" {
		acc.Addf("This Credit Note has been used for reversal of Debit Note(%s).", n.ReversedDebitNoteNumber)
	}
	if n.ReversedByDebitNoteID != "" {
		acc.Addf("Reversal Debit Note(%s) has been created for this Credit Note.", n.ReversedByDebitNoteNumber)
	}

	return finish(c, &acc, preview, in.Schedule)
}

// ValidateAmount checks that the note value does not exceed what is still due
// on the invoice. Amounts already scheduled from this note against the invoice
// count as due, and the configured slack absorbs rounding.
func (s *Service) ValidateAmount(ctx context.Context, n *note.Note, invoice *note.Invoice, preview bool) (validation.Outcome[*note.Note], error) {
	c := s.begin(ctx, "amount", n.ID)
	cfg := s.configFor(ctx)

	due := invoice.AmountDue
	for _, entry := range n.PaymentSchedule {
		if entry.ReferenceID == n.InvoiceID {
			due = due.Add(entry.InitialTotalAmount)
		}
	}

	value := numeric.RoundOff(n.NoteValue, 2)
	due = numeric.RoundOff(due, 2)

	var acc validation.Accumulator
	if value.GreaterThan(due) && value.Sub(due).GreaterThan(cfg.AmountDueSlack) {
		acc.Add(ValueAboveAmountDue)
	}

	return finish(c, &acc, preview, n)
}

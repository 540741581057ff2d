package mutation

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/reconcile"
	"github.com/robinvdvleuten/creditnote/validation"
)

// E-invoicing submission messages.
const (
	SubmissionAmountPaid  = "Amount paid cannot be greater than 0"
	SubmissionWrongStatus = "Cannot submit for e-invoicing as credit note is in draft or cancelled status"
	SubmissionAlreadyDone = "Cannot submit for e-invoicing as credit note is already submitted for e-invoicing"
	submissionTCSRateFmt  = "Cannot create credit note: Selected TCS Rate is not applicable, please select these tcs rates %s"
)

// ValidateForEInvoicingSubmission checks that a persisted note can be
// submitted for e-invoicing. An inapplicable TCS rate aborts the check.
func (s *Service) ValidateForEInvoicingSubmission(ctx context.Context, n *note.Note, isEdit bool, preview bool) (validation.Outcome[*note.Note], error) {
	c := s.begin(ctx, "einvoicing_submission", n.ID)
	cfg := s.configFor(ctx)

	var acc validation.Accumulator
	if !isEdit && n.AmountPaid.IsPositive() {
		acc.Add(SubmissionAmountPaid)
	}
	if n.Status == note.StatusDraft || n.Status == note.StatusCancelled {
		acc.Add(SubmissionWrongStatus)
	}
	if n.IRNStatus == note.IRNGenerated || n.IsSubmittedForEInvoicing {
		acc.Add(SubmissionAlreadyDone)
	}
	acc.Merge(reconcile.BOQValue(n.Items, n.BOQItems, cfg.ValueTolerance)...)

	newFlow := note.IsNewItemFlow(n.Items)
	if newFlow && n.IsTCSApplicable && !cfg.IsApplicableTCSRate(n.TCSRate) {
		return fail[*note.Note](c, validation.Abort(fmt.Sprintf(submissionTCSRateFmt, cfg.TCSRatesString())))
	}
	if newFlow && !s.noteDateAllowed(n, n) {
		acc.Add(NoteDateClosedOnUpdate)
	}

	return finish(c, &acc, preview, n)
}

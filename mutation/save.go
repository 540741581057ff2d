package mutation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/numeric"
	"github.com/robinvdvleuten/creditnote/reason"
	"github.com/robinvdvleuten/creditnote/reconcile"
	"github.com/robinvdvleuten/creditnote/rules"
	"github.com/robinvdvleuten/creditnote/validation"
)

// Save messages.
const (
	BOQItemsRequired       = "Boq line items should be added"
	SONotAcknowledged      = "Note for selected reason can not be created as SO is not acknowledged."
	NoteAlreadyCancelled   = "Cannot edit credit note as the note is already cancelled."
	NoteAlreadyPaid        = "Cannot edit credit note as amount already paid."
	NoteSubmittedEInvoice  = "Cannot edit credit note as it has been submitted einvoicing."
	TCSValueChanged        = "Can not change tcs value."
	OldNoteForNewInvoice   = "Can not raise old credit note for new invoice."
	OldNoteForNewDebitNote = "Can not raise old credit note for new debit note."
	OldNoteForNewContract  = "Can not raise old credit note for new contract."
)

// SaveInput is a proposed note together with its resolved source documents.
type SaveInput struct {
	Note              *note.Note
	OldNote           *note.Note
	IsEdit            bool
	Invoice           *note.Invoice
	ReversedDebitNote *note.DebitNote
	Contract          *note.Contract
}

// EvaluateReason checks a note against the descriptor of its reason.
func (s *Service) EvaluateReason(ctx context.Context, in rules.Input, preview bool) (validation.Outcome[*note.Note], error) {
	var id string
	if in.Note != nil {
		id = in.Note.ID
	}
	c := s.begin(ctx, "reason", id)
	out, err := s.evaluator().Evaluate(ctx, in, preview)
	c.end(out.Errors, err)
	return out, err
}

// ValidateBOQItems requires linked BOQ items when the note is raised against
// a BOQ-sourced invoice of a contract that mandates a bill of quantities.
func (s *Service) ValidateBOQItems(n *note.Note, meta reason.Metadata, contract *note.Contract, invoice *note.Invoice) error {
	if invoice != nil && (!invoice.IsCreatedFromBOQ || contract == nil || !contract.IsBOQRequiredToCreateOrder) {
		return nil
	}
	if !note.IsNewItemFlow(n.Items) || meta.ItemsFrom != reason.FromInvoice || !contract.HasBOQLineItems() {
		return nil
	}
	if meta.HasInventoryImpact && len(n.BOQItems) == 0 {
		return validation.Abort(BOQItemsRequired)
	}
	if !meta.HasInventoryImpact && len(n.NoInventoryImpactBOQItems) == 0 {
		return validation.Abort(BOQItemsRequired)
	}
	return nil
}

// ValidateOnSave runs the save and preview checks for a proposed note.
//
// Unit rate and cess precision failures are returned as soon as they are
// found. Once the business rules pass, the note is compared with its
// authoritative source document: the invoice, else a new flow reversed debit
// note, else the contract.
func (s *Service) ValidateOnSave(ctx context.Context, in SaveInput, preview bool) (validation.Outcome[*note.Note], error) {
	n := in.Note
	c := s.begin(ctx, "save", n.ID)
	cfg := s.configFor(ctx)

	meta, err := s.registry.Lookup(n.Reason)
	if err != nil {
		return fail[*note.Note](c, validation.Abort(err.Error()))
	}
	if err := s.ValidateBOQItems(n, meta, in.Contract, in.Invoice); err != nil {
		return fail[*note.Note](c, err)
	}

	newFlow := note.IsNewItemFlow(n.Items)
	var acc validation.Accumulator
	for _, item := range n.Items {
		acc.Merge(numeric.NegativeValues(item)...)
	}

	if newFlow && meta.DocumentAcknowledgmentCheck && (in.Contract == nil || !cfg.IsAcknowledged(in.Contract.Status)) {
		acc.Add(SONotAcknowledged)
	}
	if meta.ItemsFrom == reason.FromSO {
		acc.Merge(contractItemChecks(n, in.Contract)...)
	}

	if old := in.OldNote; old != nil {
		if old.Status == note.StatusCancelled {
			acc.Add(NoteAlreadyCancelled)
		}
		if !in.IsEdit && old.AmountPaid.IsPositive() {
			acc.Add(NoteAlreadyPaid)
		}
		if old.IsSubmittedForEInvoicing || old.IRNStatus == note.IRNGenerated {
			acc.Add(NoteSubmittedEInvoice)
		}
	}

	if newFlow && meta.ItemsAreUndeletable() && meta.ItemsFrom != reason.FromCustom {
		if dn := in.ReversedDebitNote; dn != nil && tcsChanged(n, dn.IsTCSApplicable, dn.TCSRate) {
			acc.Add(TCSValueChanged)
		}
		if inv := in.Invoice; inv != nil && meta.ItemsFrom == reason.FromInvoice && tcsChanged(n, inv.IsTCSApplicable, inv.TCSRate) {
			acc.Add(TCSValueChanged)
		}
	}

	acc.Merge(reconcile.BOQValue(n.Items, n.LinkedBOQItems(), cfg.ValueTolerance)...)

	if (in.Contract != nil && in.Contract.IsUnitRateValidationRequired) || (newFlow && meta.ItemsFrom == reason.FromCustom) {
		if err := numeric.ValidateUnitRates(n.Items); err != nil {
			return fail[*note.Note](c, err)
		}
	}

	if !meta.HSNSACCodeRestricted && s.hsn != nil {
		var oldItems []note.Item
		if in.OldNote != nil {
			oldItems = in.OldNote.Items
		}
		invalid, err := s.hsn.InvalidHSN(ctx, oldItems, n.Items)
		if err != nil {
			return fail[*note.Note](c, fmt.Errorf("failed to validate hsn codes: %w", err))
		}
		acc.Merge(invalid...)
	}

	if newFlow {
		if err := numeric.ValidateDecimalPlaces("cessAmount", n.Items, cfg.MaxDecimalPlaces); err != nil {
			return fail[*note.Note](c, err)
		}
	}

	errs, err := acc.Flush(preview)
	if err != nil {
		return fail[*note.Note](c, err)
	}
	if err := s.validateSource(ctx, in); err != nil {
		return fail[*note.Note](c, err)
	}

	c.end(errs, nil)
	return validation.Outcome[*note.Note]{Errors: errs, Data: n}, nil
}

// contractItemChecks bounds sales order items by their contract lines.
func contractItemChecks(n *note.Note, contract *note.Contract) []string {
	var lines map[string]note.ContractLineItem
	var unitRateRequired bool
	if contract != nil {
		lines = contract.ItemsByID()
		unitRateRequired = contract.IsUnitRateValidationRequired
	}

	var msgs []string
	for _, item := range n.Items {
		line, ok := lines[item.ContractLineItemID]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("no contract line item found for %s", item.DisplayName()))
			continue
		}
		if item.Quantity.GreaterThan(line.Quantity) {
			msgs = append(msgs, fmt.Sprintf("Item %s quantity (%s) can not be greater than contract lineItem quantity.",
				item.ItemCode, item.Quantity.String()))
		}
		// Invoiced lines and contracts with their own unit rate rule are checked elsewhere.
		if !unitRateRequired && len(line.InvoiceAllocations) == 0 && !numeric.ValidUnitRate(item.UnitRate) {
			msgs = append(msgs, (&numeric.UnitRateError{
				Name:     item.DisplayName(),
				ItemCode: item.ItemCode,
				UnitRate: item.UnitRate,
			}).Error())
		}
	}
	return msgs
}

func tcsChanged(n *note.Note, applicable bool, rate decimal.Decimal) bool {
	return n.IsTCSApplicable != applicable || !n.TCSRate.Equal(rate)
}

func (s *Service) validateSource(ctx context.Context, in SaveInput) error {
	if s.sources == nil {
		return nil
	}
	n := in.Note

	switch {
	case in.Invoice != nil:
		return s.sources.ValidateSource(ctx, SourceDocument{
			Kind:    SourceInvoice,
			ID:      in.Invoice.ID,
			NewFlow: note.IsNewItemFlowSource(in.Invoice.Items),
		}, n, OldNoteForNewInvoice)
	case in.ReversedDebitNote != nil && note.IsNewItemFlowSource(in.ReversedDebitNote.Items):
		return s.sources.ValidateSource(ctx, SourceDocument{
			Kind:    SourceDebitNote,
			ID:      in.ReversedDebitNote.ID,
			NewFlow: true,
		}, n, OldNoteForNewDebitNote)
	}

	oldNewFlow := in.OldNote == nil || note.IsNewItemFlow(in.OldNote.Items)
	if in.Contract != nil && oldNewFlow && in.ReversedDebitNote == nil && n.Reason != reason.ConditionalQtyReversal {
		return s.sources.ValidateSource(ctx, SourceDocument{
			Kind:    SourceContract,
			ID:      in.Contract.ID,
			NewFlow: note.IsNewItemFlowContract(in.Contract.Items),
		}, n, OldNoteForNewContract)
	}
	return nil
}

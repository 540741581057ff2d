// Package rules evaluates a credit note against the descriptor of its reason.
package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/numeric"
	"github.com/robinvdvleuten/creditnote/reason"
	"github.com/robinvdvleuten/creditnote/reconcile"
	"github.com/robinvdvleuten/creditnote/telemetry"
	"github.com/robinvdvleuten/creditnote/validation"
)

// Evaluation Flow
//
// Evaluate runs in two phases.
//
// 1. Preconditions (abort on first failure)
//   - the note names a reason
//   - the note has at least one item
//   - the reason exists in the registry
//   - the source document the reason draws items from was resolved
//
// 2. Item rules (accumulate, never short-circuit)
//
//   Evaluator.Evaluate(ctx, in, preview)
//     ├─ checkItemCount()          // debit note items are reproduced one to one
//     ├─ checkInvoiceUnitRates()   // unit rate ceiling against invoice lines
//     └─ for every item:
//         ├─ checkItemCode()       // code belongs to the reason
//         ├─ checkItemName()       // canonical name unless name is editable
//         ├─ checkHSNSACCode()     // mandated code
//         ├─ checkTaxRates()       // resolved rates against igst or cgst/sgst
//         ├─ checkDefaults()       // mandated quantity and unit
//         └─ reconcile             // against invoice or debit note lines
//
// Messages are deduplicated in first-seen order and flushed through a
// validation.Accumulator, so preview callers get every message while commit
// callers get one *validation.ValidationError.

// Precondition messages.
const (
	ReasonRequired  = "Reason is required for credit note creation"
	ItemsRequired   = "At least one item is required for credit note creation"
	InvoiceNotFound = "no invoice found"
	DebitNotFound   = "no debit note found"
)

// TaxRateResolver returns the tax rates items of a note must carry. An empty
// result disables the tax rate rule.
type TaxRateResolver interface {
	TaxRatesForNote(meta reason.Metadata, einvoiceSubType string, contract *note.Contract) []decimal.Decimal
}

// Input is everything a reason evaluation looks at. Source documents not
// relevant to the reason may be nil.
type Input struct {
	Note      *note.Note
	Invoice   *note.Invoice
	DebitNote *note.DebitNote
	Contract  *note.Contract
	IsEdit    bool
	OldNote   *note.Note
}

// Evaluator checks notes against the reason registry. It holds no mutable
// state and is safe for concurrent use.
type Evaluator struct {
	Registry *reason.Registry
	// TaxRates resolves rates for reasons with a tax rate constraint. When nil
	// the descriptor's own rates are used.
	TaxRates TaxRateResolver
}

// NewEvaluator creates an evaluator over registry.
func NewEvaluator(registry *reason.Registry, taxRates TaxRateResolver) *Evaluator {
	return &Evaluator{Registry: registry, TaxRates: taxRates}
}

// Evaluate checks in.Note against its reason descriptor and source documents.
func (e *Evaluator) Evaluate(ctx context.Context, in Input, preview bool) (validation.Outcome[*note.Note], error) {
	timer := telemetry.StartTimer(ctx, "rules.evaluate")
	defer timer.End()

	n := in.Note
	if n == nil || n.Reason == "" {
		return validation.Outcome[*note.Note]{}, validation.Abort(ReasonRequired)
	}
	if len(n.Items) == 0 {
		return validation.Outcome[*note.Note]{}, validation.Abort(ItemsRequired)
	}

	registry := e.Registry
	if registry == nil {
		registry = reason.Default()
	}
	meta, err := registry.Lookup(n.Reason)
	if err != nil {
		return validation.Outcome[*note.Note]{}, validation.Abort(err.Error())
	}

	switch meta.ItemsFrom {
	case reason.FromInvoice:
		if in.Invoice == nil {
			return validation.Outcome[*note.Note]{}, validation.Abort(InvoiceNotFound)
		}
	case reason.FromDebitNote:
		if in.DebitNote == nil {
			return validation.Outcome[*note.Note]{}, validation.Abort(DebitNotFound)
		}
	}

	r := newRun(meta, in, e.taxRates(meta, in))

	var acc validation.Accumulator
	acc.Merge(r.checkItemCount()...)
	acc.Merge(r.checkInvoiceUnitRates()...)
	for _, item := range n.Items {
		acc.Merge(r.checkItem(item)...)
	}

	return validation.Finish(&acc, preview, n)
}

func (e *Evaluator) taxRates(meta reason.Metadata, in Input) []decimal.Decimal {
	if !meta.TaxRates.Set {
		return nil
	}
	if e.TaxRates == nil {
		return meta.TaxRates.Value
	}
	return e.TaxRates.TaxRatesForNote(meta, in.Note.EInvoiceSubType, in.Contract)
}

// run holds the per-call state of one evaluation.
type run struct {
	meta       reason.Metadata
	in         Input
	rates      []decimal.Decimal
	newFlow    bool
	sourceByID map[string]note.SourceItem
	invoice    reconcile.InvoiceOptions
}

func newRun(meta reason.Metadata, in Input, rates []decimal.Decimal) *run {
	r := &run{meta: meta, in: in, rates: rates, newFlow: note.IsNewItemFlow(in.Note.Items)}
	switch meta.ItemsFrom {
	case reason.FromInvoice:
		r.sourceByID = in.Invoice.ItemsByID()
		r.invoice = reconcile.InvoiceOptions{
			Meta:        meta,
			Migrated:    r.migrated(),
			HasBOQItems: len(in.Note.BOQItems) > 0,
		}
		if in.IsEdit && in.OldNote != nil {
			r.invoice.OldQuantities = reconcile.OldQuantities(in.OldNote.Items)
		}
	case reason.FromDebitNote:
		r.sourceByID = in.DebitNote.ItemsByID()
	}
	return r
}

func (r *run) migrated() bool {
	return r.in.Contract != nil && r.in.Contract.IsSegment2Migrated
}

func (r *run) checkItemCount() []string {
	if r.meta.ItemsFrom != reason.FromDebitNote || r.in.DebitNote.Items == nil {
		return nil
	}
	if len(r.in.Note.Items) != len(r.in.DebitNote.Items) {
		return []string{fmt.Sprintf("items can't be modified for reason: %s", r.in.Note.Reason)}
	}
	return nil
}

// checkInvoiceUnitRates skips items without a resolvable invoice line; those
// are reported by reconciliation.
func (r *run) checkInvoiceUnitRates() []string {
	if r.in.Invoice == nil || !r.meta.ValidateAgainstInvoiceUnitRate {
		return nil
	}
	lines := r.in.Invoice.ItemsByID()
	var msgs []string
	for _, item := range r.in.Note.Items {
		if item.InvoiceLineItemID == "" {
			continue
		}
		line, ok := lines[item.InvoiceLineItemID]
		if !ok {
			continue
		}
		if item.UnitRate.GreaterThan(line.UnitRate) {
			msgs = append(msgs, fmt.Sprintf("Item unit rate (%s) cannot be greater than invoice unit rate (%s)",
				item.UnitRate.String(), line.UnitRate.String()))
		}
	}
	return msgs
}

func (r *run) checkItem(item note.Item) []string {
	msgs := numeric.NegativeValues(item)
	msgs = append(msgs, r.checkItemCode(item)...)
	msgs = append(msgs, r.checkItemName(item)...)
	msgs = append(msgs, r.checkHSNSACCode(item)...)
	msgs = append(msgs, r.checkTaxRates(item)...)
	msgs = append(msgs, r.checkDefaults(item)...)
	msgs = append(msgs, r.reconcile(item)...)
	return msgs
}

func (r *run) checkItemCode(item note.Item) []string {
	names, ok := r.meta.ItemCodeNames.Get()
	if !ok {
		return nil
	}
	if _, known := names[item.ItemCode]; !known {
		return []string{fmt.Sprintf("Mentioned item code: %s does not match with the credit note reason: %s",
			item.ItemCode, r.in.Note.Reason)}
	}
	return nil
}

func (r *run) checkItemName(item note.Item) []string {
	if r.meta.IsUserEditable("name") {
		return nil
	}
	names, ok := r.meta.ItemCodeNames.Get()
	if !ok {
		return nil
	}
	canonical := names[item.ItemCode]
	if canonical == "" || canonical == item.ItemName {
		return nil
	}
	return []string{fmt.Sprintf("Item name for all items should be %s", canonical)}
}

func (r *run) checkHSNSACCode(item note.Item) []string {
	code, ok := r.meta.MandatedCode()
	if !ok || item.HSNCode == code || item.SACCode == code {
		return nil
	}
	return []string{fmt.Sprintf("HSN or SAC code for all items should be %s", code)}
}

// checkTaxRates compares igst for integrated tax notes, otherwise both halves
// of the split tax against the resolved full rates.
func (r *run) checkTaxRates(item note.Item) []string {
	if len(r.rates) == 0 {
		return nil
	}
	two := decimal.NewFromInt(2)
	if r.in.Note.IsIntegratedTax {
		if !containsRate(r.rates, item.IGST) {
			return []string{fmt.Sprintf("igst for all items should be %s", joinRates(r.rates, decimal.NewFromInt(1)))}
		}
		return nil
	}
	if !containsRate(r.rates, item.CGST.Mul(two)) || !containsRate(r.rates, item.SGST.Mul(two)) {
		return []string{fmt.Sprintf("cgst and sgst for all items should be %s", joinRates(r.rates, two))}
	}
	return nil
}

func (r *run) checkDefaults(item note.Item) []string {
	var msgs []string
	if qty, ok := r.meta.DefaultQuantity.Get(); ok && !item.Quantity.Equal(qty) {
		msgs = append(msgs, fmt.Sprintf("quantity for all items should be %s", qty.String()))
	}
	if unit, ok := r.meta.DefaultUnit.Get(); ok && item.Unit != unit {
		msgs = append(msgs, fmt.Sprintf("unit for all items should be %s", unit))
	}
	return msgs
}

// reconcile compares new item flow notes against their source lines. Legacy
// notes carry no line provenance and are not reconciled.
func (r *run) reconcile(item note.Item) []string {
	if !r.newFlow {
		return nil
	}
	switch r.meta.ItemsFrom {
	case reason.FromInvoice:
		return reconcile.InvoiceItem(item, r.sourceByID, r.invoice)
	case reason.FromDebitNote:
		return reconcile.DebitNoteItem(item, r.sourceByID, r.migrated())
	}
	return nil
}

func containsRate(rates []decimal.Decimal, rate decimal.Decimal) bool {
	for _, r := range rates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

func joinRates(rates []decimal.Decimal, divisor decimal.Decimal) string {
	parts := make([]string, len(rates))
	for i, r := range rates {
		parts[i] = r.Div(divisor).String()
	}
	return strings.Join(parts, " or ")
}

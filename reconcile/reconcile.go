// Package reconcile compares credit note items against the document they were
// raised from: invoice lines, debit note lines, or linked BOQ items.
//
// Every function returns plain messages; a missing source line is a business
// error, not a structural one, so callers accumulate rather than abort.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/numeric"
	"github.com/robinvdvleuten/creditnote/reason"
)

// BOQValueMismatch is reported when custom items and BOQ items disagree in value.
const BOQValueMismatch = "Custom items total value does not match with linked boq items total value"

// InvoiceOptions carries the context of an invoice reconciliation.
type InvoiceOptions struct {
	Meta reason.Metadata
	// OldQuantities holds, per invoice line id, the quantity the note being
	// edited already consumes. Nil when creating.
	OldQuantities map[string]decimal.Decimal
	// Migrated skips code, tax and unit equality for segment-2 migrated contracts.
	Migrated bool
	// HasBOQItems skips the quantity bound for service (SAC) lines.
	HasBOQItems bool
}

// OldQuantities indexes the items of the note being edited by invoice line.
func OldQuantities(old []note.Item) map[string]decimal.Decimal {
	byLine := make(map[string]decimal.Decimal, len(old))
	for _, item := range old {
		if item.InvoiceLineItemID == "" {
			continue
		}
		byLine[item.InvoiceLineItemID] = item.Quantity
	}
	return byLine
}

// InvoiceItem reconciles one note item against the invoice lines.
func InvoiceItem(item note.Item, lines map[string]note.SourceItem, opts InvoiceOptions) []string {
	name := item.DisplayName()
	line, ok := lines[item.InvoiceLineItemID]
	if !ok || item.InvoiceLineItemID == "" {
		return []string{fmt.Sprintf("no invoice line item found for %s", name)}
	}

	var msgs []string
	if !(opts.HasBOQItems && item.SACCode != "") {
		limit := line.UnadjustedQuantity
		if old, ok := opts.OldQuantities[item.InvoiceLineItemID]; ok {
			limit = limit.Add(old)
		}
		if opts.Meta.HasInventoryImpact && item.Quantity.GreaterThan(limit) {
			msgs = append(msgs, fmt.Sprintf("quantity of item %s can't exceed %s", name, limit.String()))
		} else if opts.Meta.QuantityValidation && item.Quantity.GreaterThan(line.Quantity) {
			msgs = append(msgs, fmt.Sprintf("quantity of item %s can't exceed %s", name, line.Quantity.String()))
		}
	}

	if opts.Migrated {
		return msgs
	}
	if item.HSNCode != line.HSNCode || item.SACCode != line.SACCode {
		msgs = append(msgs, fmt.Sprintf("hsn/sac code of item %s does not match with invoice", name))
	}
	if !sameTaxes(item, line) {
		msgs = append(msgs, fmt.Sprintf("tax rates(cgst/sgst/igst) of item %s does not match with invoice", name))
	}
	if item.Unit != line.Unit {
		msgs = append(msgs, fmt.Sprintf("unit of item '%s' does not match with invoice", name))
	}
	return msgs
}

// Invoice reconciles all items against the invoice.
func Invoice(items []note.Item, invoice *note.Invoice, opts InvoiceOptions) []string {
	lines := invoice.ItemsByID()
	var msgs []string
	for _, item := range items {
		msgs = append(msgs, InvoiceItem(item, lines, opts)...)
	}
	return msgs
}

// DebitNoteItem reconciles one note item against the debit note lines. Debit
// note items are reproduced one to one, so quantities must be equal.
func DebitNoteItem(item note.Item, lines map[string]note.SourceItem, migrated bool) []string {
	name := item.DisplayName()
	line, ok := lines[item.ID]
	if !ok || item.ID == "" {
		return []string{fmt.Sprintf("no item found for %s", name)}
	}

	var msgs []string
	if !item.Quantity.Equal(line.Quantity) {
		msgs = append(msgs, fmt.Sprintf("quantity of item %s does not match with debit note", name))
	}
	if migrated {
		return msgs
	}
	if item.HSNCode != line.HSNCode || item.SACCode != line.SACCode {
		msgs = append(msgs, fmt.Sprintf("hsn/sac code of item %s does not match with debit note", name))
	}
	if !sameTaxes(item, line) {
		msgs = append(msgs, fmt.Sprintf("tax rates(cgst/sgst/igst) of item %s does not match with debit note", name))
	}
	return msgs
}

// DebitNote reconciles all items against the debit note.
func DebitNote(items []note.Item, debitNote *note.DebitNote, migrated bool) []string {
	lines := debitNote.ItemsByID()
	var msgs []string
	for _, item := range items {
		msgs = append(msgs, DebitNoteItem(item, lines, migrated)...)
	}
	return msgs
}

// BOQValue reconciles the total value of custom items against linked BOQ items.
// It reports nothing when no BOQ items are linked.
func BOQValue(items []note.Item, boq []note.BOQItem, tolerance decimal.Decimal) []string {
	if len(boq) == 0 {
		return nil
	}
	if numeric.ReconciledWithin(note.TotalValue(items), note.TotalBOQValue(boq), tolerance) {
		return nil
	}
	return []string{BOQValueMismatch}
}

func sameTaxes(item note.Item, line note.SourceItem) bool {
	return item.CGST.Equal(line.CGST) && item.SGST.Equal(line.SGST) && item.IGST.Equal(line.IGST)
}

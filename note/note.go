// Package note defines the credit note document model and the source documents
// (invoices, debit notes, sales contracts) a note is validated against.
//
// Source documents are owned by the surrounding billing system; validation only
// ever reads them. All monetary amounts, quantities and tax rates are carried as
// decimal.Decimal so that comparisons never suffer from floating point noise.
package note

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a credit note.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// IRNStatus is the e-invoicing registration state of a note.
type IRNStatus string

const (
	IRNNotApplicable IRNStatus = "NOT_APPLICABLE"
	IRNPending       IRNStatus = "PENDING"
	IRNGenerated     IRNStatus = "GENERATED"
)

// CurrentSchemaVersion marks notes written by the current document schema.
const CurrentSchemaVersion = "2"

// Note is a customer credit note in the state proposed by a mutation.
type Note struct {
	ID                        string            `json:"_id,omitempty" bson:"_id,omitempty"`
	NoteNumber                string            `json:"noteNumber,omitempty" bson:"noteNumber,omitempty"`
	Status                    Status            `json:"status,omitempty" bson:"status,omitempty"`
	NoteDate                  time.Time         `json:"noteDate" bson:"noteDate"`
	Reason                    string            `json:"reason,omitempty" bson:"reason,omitempty"`
	CustomerID                string            `json:"customerId,omitempty" bson:"customerId,omitempty"`
	ContractID                string            `json:"contractId,omitempty" bson:"contractId,omitempty"`
	ContractCustomerID        string            `json:"contractCustomerId,omitempty" bson:"contractCustomerId,omitempty"`
	InvoiceID                 string            `json:"invoiceId,omitempty" bson:"invoiceId,omitempty"`
	ReversedDebitNoteID       string            `json:"reversedDebitNoteId,omitempty" bson:"reversedDebitNoteId,omitempty"`
	ReversedDebitNoteNumber   string            `json:"reversedDebitNoteNumber,omitempty" bson:"reversedDebitNoteNumber,omitempty"`
	ReversedByDebitNoteID     string            `json:"reversedByDebitNoteId,omitempty" bson:"reversedByDebitNoteId,omitempty"`
	ReversedByDebitNoteNumber string            `json:"reversedByDebitNoteNumber,omitempty" bson:"reversedByDebitNoteNumber,omitempty"`
	Items                     []Item            `json:"items,omitempty" bson:"items,omitempty"`
	BOQItems                  []BOQItem         `json:"boqItems,omitempty" bson:"boqItems,omitempty"`
	NoInventoryImpactBOQItems []BOQItem         `json:"noInventoryImpactBOQItems,omitempty" bson:"noInventoryImpactBOQItems,omitempty"`
	IsTCSApplicable           bool              `json:"isTcsApplicable,omitempty" bson:"isTcsApplicable,omitempty"`
	TCSRate                   decimal.Decimal   `json:"tcsRate" bson:"tcsRate"`
	IsIntegratedTax           bool              `json:"isIntegratedTax,omitempty" bson:"isIntegratedTax,omitempty"`
	EInvoiceSubType           string            `json:"einvoiceSubType,omitempty" bson:"einvoiceSubType,omitempty"`
	IRNStatus                 IRNStatus         `json:"irnStatus,omitempty" bson:"irnStatus,omitempty"`
	IsSubmittedForEInvoicing  bool              `json:"isSubmittedForEInvoicing,omitempty" bson:"isSubmittedForEInvoicing,omitempty"`
	IsSentToMSD               *bool             `json:"isSentToMSD,omitempty" bson:"isSentToMSD,omitempty"`
	AmountPaid                decimal.Decimal   `json:"amountPaid" bson:"amountPaid"`
	NoteValue                 decimal.Decimal   `json:"noteValue" bson:"noteValue"`
	RoundedOffValue           decimal.Decimal   `json:"roundedOffValue" bson:"roundedOffValue"`
	ReferenceDocumentNumber   string            `json:"referenceDocumentNumber,omitempty" bson:"referenceDocumentNumber,omitempty"`
	PaymentSchedule           []PaymentSchedule `json:"paymentSchedule,omitempty" bson:"paymentSchedule,omitempty"`
	SchemaVersion             string            `json:"schemaVersion,omitempty" bson:"schemaVersion,omitempty"`
}

// Item is a single credit note line.
type Item struct {
	ID                 string           `json:"_id,omitempty" bson:"_id,omitempty"`
	ItemCode           string           `json:"itemCode,omitempty" bson:"itemCode,omitempty"`
	ItemName           string           `json:"itemName,omitempty" bson:"itemName,omitempty"`
	Name               string           `json:"name,omitempty" bson:"name,omitempty"`
	Quantity           decimal.Decimal  `json:"quantity" bson:"quantity"`
	UnitRate           decimal.Decimal  `json:"unitRate" bson:"unitRate"`
	Unit               string           `json:"unit,omitempty" bson:"unit,omitempty"`
	HSNCode            string           `json:"itemHsnCode,omitempty" bson:"itemHsnCode,omitempty"`
	SACCode            string           `json:"itemSacCode,omitempty" bson:"itemSacCode,omitempty"`
	CGST               decimal.Decimal  `json:"cgst" bson:"cgst"`
	SGST               decimal.Decimal  `json:"sgst" bson:"sgst"`
	IGST               decimal.Decimal  `json:"igst" bson:"igst"`
	InvoiceLineItemID  string           `json:"invoiceLineItemId,omitempty" bson:"invoiceLineItemId,omitempty"`
	ContractLineItemID string           `json:"contractLineItemId,omitempty" bson:"contractLineItemId,omitempty"`
	CessAmount         *decimal.Decimal `json:"cessAmount,omitempty" bson:"cessAmount,omitempty"`
	TaxSchemaVersion   int              `json:"taxSchemaVersion,omitempty" bson:"taxSchemaVersion,omitempty"`
}

// DisplayName returns the name used in validation messages.
func (i Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ItemName
}

// Value returns quantity × unit rate.
func (i Item) Value() decimal.Decimal {
	return i.Quantity.Mul(i.UnitRate)
}

// BOQItem is a bill-of-quantities line linked to a note.
type BOQItem struct {
	ID       string          `json:"_id,omitempty" bson:"_id,omitempty"`
	ItemCode string          `json:"itemCode,omitempty" bson:"itemCode,omitempty"`
	Quantity decimal.Decimal `json:"quantity" bson:"quantity"`
	UnitRate decimal.Decimal `json:"unitRate" bson:"unitRate"`
}

// Value returns quantity × unit rate.
func (b BOQItem) Value() decimal.Decimal {
	return b.Quantity.Mul(b.UnitRate)
}

// PaymentSchedule allocates part of a note's value against a reference document.
type PaymentSchedule struct {
	ReferenceID        string          `json:"referenceId" bson:"referenceId"`
	InitialTotalAmount decimal.Decimal `json:"initialTotalAmount" bson:"initialTotalAmount"`
}

// TotalValue sums the value of all items.
func TotalValue(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Value())
	}
	return total
}

// TotalBOQValue sums the value of all BOQ items.
func TotalBOQValue(items []BOQItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Value())
	}
	return total
}

// LinkedBOQItems returns the BOQ lines attached to the note, preferring the
// inventory-impacting set.
func (n *Note) LinkedBOQItems() []BOQItem {
	if len(n.BOQItems) > 0 {
		return n.BOQItems
	}
	return n.NoInventoryImpactBOQItems
}

// IsReversalLinked reports whether the note reverses, or is reversed by, a debit note.
func (n *Note) IsReversalLinked() bool {
	return n.ReversedDebitNoteID != "" || n.ReversedByDebitNoteID != ""
}

package note

import (
	"github.com/shopspring/decimal"
)

// SourceItem is a line on an invoice or debit note a credit note may be raised against.
type SourceItem struct {
	ID                 string          `json:"_id" bson:"_id"`
	ItemCode           string          `json:"itemCode,omitempty" bson:"itemCode,omitempty"`
	Quantity           decimal.Decimal `json:"quantity" bson:"quantity"`
	UnadjustedQuantity decimal.Decimal `json:"unadjustedQuantity" bson:"unadjustedQuantity"`
	UnitRate           decimal.Decimal `json:"unitRate" bson:"unitRate"`
	Unit               string          `json:"unit,omitempty" bson:"unit,omitempty"`
	HSNCode            string          `json:"itemHsnCode,omitempty" bson:"itemHsnCode,omitempty"`
	SACCode            string          `json:"itemSacCode,omitempty" bson:"itemSacCode,omitempty"`
	CGST               decimal.Decimal `json:"cgst" bson:"cgst"`
	SGST               decimal.Decimal `json:"sgst" bson:"sgst"`
	IGST               decimal.Decimal `json:"igst" bson:"igst"`
	TaxSchemaVersion   int             `json:"taxSchemaVersion,omitempty" bson:"taxSchemaVersion,omitempty"`
}

// Invoice is the source document for notes whose items come from an invoice.
type Invoice struct {
	ID               string          `json:"_id" bson:"_id"`
	InvoiceNumber    string          `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`
	Items            []SourceItem    `json:"items,omitempty" bson:"items,omitempty"`
	IsTCSApplicable  bool            `json:"isTcsApplicable,omitempty" bson:"isTcsApplicable,omitempty"`
	TCSRate          decimal.Decimal `json:"tcsRate" bson:"tcsRate"`
	IsCreatedFromBOQ bool            `json:"isCreatedFromBOQ,omitempty" bson:"isCreatedFromBOQ,omitempty"`
	AmountDue        decimal.Decimal `json:"amountDue" bson:"amountDue"`
}

// ItemsByID indexes the invoice lines by id.
func (i *Invoice) ItemsByID() map[string]SourceItem {
	return indexSourceItems(i.Items)
}

// DebitNote is a customer debit note, either the source of a reversing credit
// note or the document that reverses one.
type DebitNote struct {
	ID              string          `json:"_id" bson:"_id"`
	NoteNumber      string          `json:"noteNumber,omitempty" bson:"noteNumber,omitempty"`
	Items           []SourceItem    `json:"items,omitempty" bson:"items,omitempty"`
	IsTCSApplicable bool            `json:"isTcsApplicable,omitempty" bson:"isTcsApplicable,omitempty"`
	TCSRate         decimal.Decimal `json:"tcsRate" bson:"tcsRate"`
}

// ItemsByID indexes the debit note lines by id.
func (d *DebitNote) ItemsByID() map[string]SourceItem {
	return indexSourceItems(d.Items)
}

func indexSourceItems(items []SourceItem) map[string]SourceItem {
	byID := make(map[string]SourceItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}

// ContractStatus is the lifecycle state of a sales contract.
type ContractStatus string

const (
	ContractPOAcknowledged ContractStatus = "PO_ACKNOWLEDGED"
	ContractBillingStarted ContractStatus = "BILLING_STARTED"
	ContractOrderReleased  ContractStatus = "ORDER_RELEASED"
	ContractBillingStopped ContractStatus = "BILLING_STOPPED"
)

// ContractLineItem is a sales order line.
type ContractLineItem struct {
	ID                 string          `json:"_id" bson:"_id"`
	ItemCode           string          `json:"itemCode,omitempty" bson:"itemCode,omitempty"`
	Quantity           decimal.Decimal `json:"quantity" bson:"quantity"`
	UnitRate           decimal.Decimal `json:"unitRate" bson:"unitRate"`
	InvoiceAllocations []string        `json:"invoiceAllocations,omitempty" bson:"invoiceAllocations,omitempty"`
	TaxSchemaVersion   int             `json:"taxSchemaVersion,omitempty" bson:"taxSchemaVersion,omitempty"`
}

// BOQDetails holds the bill of quantities attached to a contract.
type BOQDetails struct {
	LineItems []BOQItem `json:"lineItems,omitempty" bson:"lineItems,omitempty"`
}

// Contract is the sales contract (sales order) a note belongs to.
type Contract struct {
	ID                           string             `json:"_id" bson:"_id"`
	CustomerID                   string             `json:"customerId,omitempty" bson:"customerId,omitempty"`
	Status                       ContractStatus     `json:"status,omitempty" bson:"status,omitempty"`
	Items                        []ContractLineItem `json:"items,omitempty" bson:"items,omitempty"`
	IsUnitRateValidationRequired bool               `json:"isUnitRateValidationRequired,omitempty" bson:"isUnitRateValidationRequired,omitempty"`
	IsBOQRequiredToCreateOrder   bool               `json:"isBOQRequiredToCreateOrder,omitempty" bson:"isBOQRequiredToCreateOrder,omitempty"`
	BOQDetails                   *BOQDetails        `json:"boqDetails,omitempty" bson:"boqDetails,omitempty"`
	IsSegment2Migrated           bool               `json:"isSegment2Migrated,omitempty" bson:"isSegment2Migrated,omitempty"`
}

// ItemsByID indexes the contract lines by id.
func (c *Contract) ItemsByID() map[string]ContractLineItem {
	byID := make(map[string]ContractLineItem, len(c.Items))
	for _, item := range c.Items {
		byID[item.ID] = item
	}
	return byID
}

// HasBOQLineItems reports whether the contract carries a bill of quantities.
func (c *Contract) HasBOQLineItems() bool {
	return c != nil && c.BOQDetails != nil && c.BOQDetails.LineItems != nil
}

// PaymentStatus is the state of a finance payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PAYMENT_PENDING"
	PaymentSuccess PaymentStatus = "PAYMENT_SUCCESS"
	PaymentFailed  PaymentStatus = "PAYMENT_FAILED"
)

// Charge is a fee recorded against a finance payment.
type Charge struct {
	Name   string          `json:"name,omitempty" bson:"name,omitempty"`
	Amount decimal.Decimal `json:"amount" bson:"amount"`
}

// FinancePayment is a payment recorded against a credit note.
type FinancePayment struct {
	ID         string          `json:"_id" bson:"_id"`
	NoteID     string          `json:"creditNoteId" bson:"creditNoteId"`
	Status     PaymentStatus   `json:"status,omitempty" bson:"status,omitempty"`
	Amount     decimal.Decimal `json:"amount" bson:"amount"`
	PaidAmount decimal.Decimal `json:"paidAmount" bson:"paidAmount"`
	Charges    []Charge        `json:"chargeDetails,omitempty" bson:"chargeDetails,omitempty"`
	// ChargesTotal is the pre-summed charge amount stored on the payment.
	ChargesTotal decimal.Decimal `json:"charges" bson:"charges"`
}

// ChargeAmount sums the itemised charges.
func (p FinancePayment) ChargeAmount() decimal.Decimal {
	total := decimal.Zero
	for _, charge := range p.Charges {
		total = total.Add(charge.Amount)
	}
	return total
}

// Customer carries the customer attributes validation needs.
type Customer struct {
	ID                       string `json:"_id" bson:"_id"`
	Name                     string `json:"name,omitempty" bson:"name,omitempty"`
	CustomerVerificationType string `json:"customerVerificationType,omitempty" bson:"customerVerificationType,omitempty"`
	GSTIN                    string `json:"gstin,omitempty" bson:"gstin,omitempty"`
}

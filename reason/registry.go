package reason

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Well-known reason codes.
const (
	SalesReturn                   = "Sales Return"
	RateDifference                = "Rate Difference"
	PostSaleDiscount              = "Post Sale Discount"
	ShortSupply                   = "Short Supply"
	QualityRejection              = "Quality Rejection"
	OrderCancellation             = "Order Cancellation"
	InterestWaiver                = "Interest Waiver"
	FreightReimbursement          = "Freight Reimbursement"
	DebitNoteReversal             = "Reversal of Debit notes"
	ConditionalQtyReversal        = "Reversal of Debit notes (Conditional Qty impact)"
	ServiceDeficiencyCompensation = "Service Deficiency Compensation"
)

// NotFoundError indicates the reason code is not registered.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Mentioned reason '%s' does not exist", e.Code)
}

// Registry is an immutable lookup of reason descriptors.
type Registry struct {
	reasons map[string]Metadata
}

// NewRegistry builds a registry from descriptors. Later descriptors with the
// same code replace earlier ones.
func NewRegistry(descriptors ...Metadata) (*Registry, error) {
	r := &Registry{reasons: make(map[string]Metadata, len(descriptors))}
	for _, m := range descriptors {
		if m.Code == "" {
			return nil, fmt.Errorf("reason descriptor without code")
		}
		if !m.ItemsFrom.Valid() {
			return nil, fmt.Errorf("reason %q: invalid itemsFrom %q", m.Code, m.ItemsFrom)
		}
		r.reasons[m.Code] = m.Clone()
	}
	return r, nil
}

// Lookup returns a copy of the descriptor for code.
func (r *Registry) Lookup(code string) (Metadata, error) {
	if m, ok := r.reasons[code]; ok {
		return m.Clone(), nil
	}
	return Metadata{}, &NotFoundError{Code: code}
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.reasons))
	for code := range r.reasons {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// With returns a new registry with the given descriptors merged over r.
func (r *Registry) With(descriptors ...Metadata) (*Registry, error) {
	merged := make([]Metadata, 0, len(r.reasons)+len(descriptors))
	for _, code := range r.Codes() {
		merged = append(merged, r.reasons[code])
	}
	merged = append(merged, descriptors...)
	return NewRegistry(merged...)
}

// Default returns the built-in reason catalogue.
func Default() *Registry {
	r, err := NewRegistry(defaultReasons()...)
	if err != nil {
		panic(err)
	}
	return r
}

func rates(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func defaultReasons() []Metadata {
	return []Metadata{
		{
			Code:               SalesReturn,
			ItemsFrom:          FromInvoice,
			HasInventoryImpact: true,
			CanDeleteItems:     Some(true),
			UserEditable:       []string{"quantity"},
			QuantityValidation: true,
		},
		{
			Code:                           RateDifference,
			ItemsFrom:                      FromInvoice,
			CanDeleteItems:                 Some(true),
			UserEditable:                   []string{"unitRate"},
			QuantityValidation:             true,
			ValidateAgainstInvoiceUnitRate: true,
		},
		{
			Code:               PostSaleDiscount,
			ItemsFrom:          FromInvoice,
			CanDeleteItems:     Some(false),
			UserEditable:       []string{"unitRate"},
			QuantityValidation: true,
		},
		{
			Code:               ShortSupply,
			ItemsFrom:          FromInvoice,
			HasInventoryImpact: true,
			CanDeleteItems:     Some(true),
			UserEditable:       []string{"quantity"},
		},
		{
			Code:               QualityRejection,
			ItemsFrom:          FromInvoice,
			HasInventoryImpact: true,
			CanDeleteItems:     Some(true),
			UserEditable:       []string{"quantity", "unitRate"},
		},
		{
			Code:                        OrderCancellation,
			ItemsFrom:                   FromSO,
			HasInventoryImpact:          true,
			CanDeleteItems:              Some(true),
			UserEditable:                []string{"quantity"},
			DocumentAcknowledgmentCheck: true,
		},
		{
			Code:           InterestWaiver,
			ItemsFrom:      FromCustom,
			CanDeleteItems: Some(false),
			ItemCodeNames: Some(map[string]string{
				"INT-WAIVER": "Interest Waiver",
			}),
			HSNSACCodes:          Some([]string{"997113"}),
			TaxRates:             Some(rates("18")),
			DefaultQuantity:      Some(decimal.NewFromInt(1)),
			DefaultUnit:          Some("NOS"),
			HSNSACCodeRestricted: true,
		},
		{
			Code:           FreightReimbursement,
			ItemsFrom:      FromCustom,
			CanDeleteItems: Some(true),
			UserEditable:   []string{"name", "unitRate"},
			ItemCodeNames: Some(map[string]string{
				"FRT-CHG": "Freight Charges",
				"LDG-CHG": "Loading Charges",
			}),
			HSNSACCodes:          Some([]string{"996511"}),
			TaxRates:             Some(rates("5", "12", "18")),
			DefaultQuantity:      Some(decimal.NewFromInt(1)),
			DefaultUnit:          Some("LOT"),
			HSNSACCodeRestricted: true,
		},
		{
			Code:                        ServiceDeficiencyCompensation,
			ItemsFrom:                   FromCustom,
			CanDeleteItems:              Some(true),
			ItemCodeNames:               Some(map[string]string{"SVC-COMP": "Service Deficiency Compensation"}),
			TaxRates:                    Some(rates("18")),
			DefaultUnit:                 Some("NOS"),
			DocumentAcknowledgmentCheck: true,
		},
		{
			Code:               DebitNoteReversal,
			ItemsFrom:          FromDebitNote,
			CanDeleteItems:     Some(false),
			QuantityValidation: true,
		},
		{
			Code:               ConditionalQtyReversal,
			ItemsFrom:          FromDebitNote,
			HasInventoryImpact: true,
			CanDeleteItems:     Some(false),
		},
	}
}

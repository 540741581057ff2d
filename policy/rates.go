package policy

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/reason"
)

// TaxRates resolves reason tax rates, letting an e-invoice sub type override
// the rates of the reason descriptor.
type TaxRates struct {
	BySubType map[string][]decimal.Decimal
}

// TaxRatesForNote returns the rates items must carry, or nil when the reason
// mandates none.
func (t TaxRates) TaxRatesForNote(meta reason.Metadata, einvoiceSubType string, _ *note.Contract) []decimal.Decimal {
	rates, ok := meta.TaxRates.Get()
	if !ok {
		return nil
	}
	if override, ok := t.BySubType[einvoiceSubType]; ok {
		return override
	}
	return rates
}

// GSTVerified marks customers whose documents are reported under GST.
const GSTVerified = "GST"

// InvalidReferenceFormat is reported for malformed GST document numbers.
const InvalidReferenceFormat = "Reference number can only contain letters, digits, '/' and '-' and can be at most 16 characters."

var gstDocumentNumber = regexp.MustCompile(`^[A-Za-z0-9/-]{1,16}$`)

// ReferenceFormat applies the GST document number format to references of
// GST verified customers.
type ReferenceFormat struct{}

// ValidateReference returns a message when reference is malformed.
func (ReferenceFormat) ValidateReference(reference string, customer *note.Customer) string {
	if customer == nil || customer.CustomerVerificationType != GSTVerified {
		return ""
	}
	if !gstDocumentNumber.MatchString(reference) {
		return InvalidReferenceFormat
	}
	return ""
}

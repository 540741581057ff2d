package reason

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// yamlReason is the on-disk shape of a descriptor. Pointer and nil-able fields
// map onto Optional presence.
type yamlReason struct {
	Code                           string            `yaml:"code"`
	ItemsFrom                      string            `yaml:"itemsFrom"`
	HasInventoryImpact             bool              `yaml:"hasInventoryImpact"`
	CanDeleteItems                 *bool             `yaml:"canDeleteItems"`
	UserEditable                   []string          `yaml:"userEditable"`
	ItemCodeNameMap                map[string]string `yaml:"itemCodeNameMap"`
	HSNSACCode                     []string          `yaml:"HSN_SACCode"`
	TaxRate                        []string          `yaml:"taxRate"`
	DefaultQuantity                *string           `yaml:"defaultQuantity"`
	DefaultUnit                    *string           `yaml:"defaultUnit"`
	QuantityValidation             bool              `yaml:"quantityValidation"`
	ValidateAgainstInvoiceUnitRate bool              `yaml:"validateAgainstInvoiceUnitRate"`
	DocumentAcknowledgmentCheck    bool              `yaml:"documentAcknowledgmentCheck"`
	IsHSNSACCodeRestricted         bool              `yaml:"isHSN_SACCodeRestricted"`
}

// LoadYAML decodes a list of reason descriptors.
//
// Example document:
//
//	- code: Interest Waiver
//	  itemsFrom: custom
//	  canDeleteItems: false
//	  itemCodeNameMap: {INT-WAIVER: Interest Waiver}
//	  HSN_SACCode: ["997113"]
//	  taxRate: ["18"]
//	  defaultQuantity: "1"
//	  defaultUnit: NOS
func LoadYAML(r io.Reader) ([]Metadata, error) {
	var raw []yamlReason
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode reasons: %w", err)
	}

	out := make([]Metadata, 0, len(raw))
	for _, y := range raw {
		m, err := y.metadata()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (y yamlReason) metadata() (Metadata, error) {
	m := Metadata{
		Code:                           y.Code,
		ItemsFrom:                      ItemsFrom(y.ItemsFrom),
		HasInventoryImpact:             y.HasInventoryImpact,
		UserEditable:                   y.UserEditable,
		QuantityValidation:             y.QuantityValidation,
		ValidateAgainstInvoiceUnitRate: y.ValidateAgainstInvoiceUnitRate,
		DocumentAcknowledgmentCheck:    y.DocumentAcknowledgmentCheck,
		HSNSACCodeRestricted:           y.IsHSNSACCodeRestricted,
	}
	if y.CanDeleteItems != nil {
		m.CanDeleteItems = Some(*y.CanDeleteItems)
	}
	if y.ItemCodeNameMap != nil {
		m.ItemCodeNames = Some(y.ItemCodeNameMap)
	}
	if y.HSNSACCode != nil {
		m.HSNSACCodes = Some(y.HSNSACCode)
	}
	if y.TaxRate != nil {
		taxRates := make([]decimal.Decimal, 0, len(y.TaxRate))
		for _, s := range y.TaxRate {
			rate, err := decimal.NewFromString(s)
			if err != nil {
				return Metadata{}, fmt.Errorf("reason %q: invalid taxRate %q: %w", y.Code, s, err)
			}
			taxRates = append(taxRates, rate)
		}
		m.TaxRates = Some(taxRates)
	}
	if y.DefaultQuantity != nil {
		qty, err := decimal.NewFromString(*y.DefaultQuantity)
		if err != nil {
			return Metadata{}, fmt.Errorf("reason %q: invalid defaultQuantity %q: %w", y.Code, *y.DefaultQuantity, err)
		}
		m.DefaultQuantity = Some(qty)
	}
	if y.DefaultUnit != nil {
		m.DefaultUnit = Some(*y.DefaultUnit)
	}
	return m, nil
}

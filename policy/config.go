package policy

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/creditnote/mutation"
)

const dateLayout = "2006-01-02"

// Config bundles the policies handed to a mutation.Service.
type Config struct {
	BookClosure BookClosure
	EInvoicing  EInvoicing
	HSN         *HSNCatalogue
	TaxRates    TaxRates
}

// DefaultConfig returns policies that close no period, apply e-invoicing to
// every registered customer, and accept any HSN/SAC code.
func DefaultConfig() *Config {
	return &Config{HSN: NewHSNCatalogue()}
}

// Options returns the service options installing every policy.
func (c *Config) Options() []mutation.Option {
	return []mutation.Option{
		mutation.WithTaxRates(c.TaxRates),
		mutation.WithHSNValidator(c.HSN),
		mutation.WithBookClosure(c.BookClosure),
		mutation.WithEInvoicing(c.EInvoicing),
		mutation.WithReferenceFormat(ReferenceFormat{}),
		mutation.WithSourceValidator(SourceFlow{}),
	}
}

type fileConfig struct {
	ClosedThrough     string              `yaml:"closed_through"`
	EInvoicingFrom    string              `yaml:"einvoicing_from"`
	EInvoicingExempt  []string            `yaml:"einvoicing_exempt_customers"`
	HSNCodes          []string            `yaml:"hsn_codes"`
	TaxRatesBySubType map[string][]string `yaml:"tax_rates_by_subtype"`
}

// LoadConfig reads policies from YAML.
// Supports:
//   - closed_through: 2024-03-31
//   - einvoicing_from: 2020-10-01
//   - einvoicing_exempt_customers: [cust-1]
//   - hsn_codes: ["7208", "997113"]
//   - tax_rates_by_subtype: {SEZWP: ["0"]}
func LoadConfig(r io.Reader) (*Config, error) {
	var raw fileConfig
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode policies: %w", err)
	}

	cfg := &Config{
		HSN:        NewHSNCatalogue(raw.HSNCodes...),
		EInvoicing: EInvoicing{ExemptCustomers: raw.EInvoicingExempt},
	}

	if raw.ClosedThrough != "" {
		day, err := time.Parse(dateLayout, raw.ClosedThrough)
		if err != nil {
			return nil, fmt.Errorf("invalid closed_through %q: %w", raw.ClosedThrough, err)
		}
		cfg.BookClosure.ClosedThrough = day.Add(24*time.Hour - time.Nanosecond)
	}
	if raw.EInvoicingFrom != "" {
		day, err := time.Parse(dateLayout, raw.EInvoicingFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid einvoicing_from %q: %w", raw.EInvoicingFrom, err)
		}
		cfg.EInvoicing.EffectiveFrom = day
	}
	if len(raw.TaxRatesBySubType) > 0 {
		cfg.TaxRates.BySubType = make(map[string][]decimal.Decimal, len(raw.TaxRatesBySubType))
		for subType, values := range raw.TaxRatesBySubType {
			rates := make([]decimal.Decimal, 0, len(values))
			for _, v := range values {
				rate, err := decimal.NewFromString(v)
				if err != nil {
					return nil, fmt.Errorf("invalid tax rate %q for %s: %w", v, subType, err)
				}
				rates = append(rates, rate)
			}
			cfg.TaxRates.BySubType[subType] = rates
		}
	}

	return cfg, nil
}

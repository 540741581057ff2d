package validation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/numeric"
)

// Config holds the tunable business constants used by the validators.
type Config struct {
	// ValueTolerance is the largest reconciled difference between two totals.
	ValueTolerance decimal.Decimal
	// MaxDecimalPlaces bounds cess amounts and unit rates.
	MaxDecimalPlaces int
	// AmountDueSlack is how far a note value may exceed the invoice due amount.
	AmountDueSlack decimal.Decimal
	// ApplicableTCSRates lists the TCS rates a note may carry besides zero.
	ApplicableTCSRates []decimal.Decimal
	// AcknowledgedContractStatuses are the contract states accepted by reasons
	// that require an acknowledged sales order.
	AcknowledgedContractStatuses []note.ContractStatus
	// FinancialYearStart is the month the financial year starts in.
	FinancialYearStart time.Month
	// ReferenceWindowEnd is the month, in the following calendar year, the
	// reference number uniqueness window ends in (inclusive).
	ReferenceWindowEnd time.Month
	// Location is the time zone financial year boundaries are computed in.
	Location *time.Location
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		ValueTolerance:   numeric.ValueTolerance,
		MaxDecimalPlaces: numeric.MaxDecimalPlaces,
		AmountDueSlack:   decimal.NewFromInt(1),
		ApplicableTCSRates: []decimal.Decimal{
			decimal.RequireFromString("0.1"),
			decimal.NewFromInt(1),
		},
		AcknowledgedContractStatuses: []note.ContractStatus{
			note.ContractPOAcknowledged,
			note.ContractBillingStarted,
			note.ContractOrderReleased,
			note.ContractBillingStopped,
		},
		FinancialYearStart: time.April,
		ReferenceWindowEnd: time.April,
		Location:           time.Local,
	}
}

// IsApplicableTCSRate reports whether rate is zero or one of the applicable rates.
func (c *Config) IsApplicableTCSRate(rate decimal.Decimal) bool {
	if rate.IsZero() {
		return true
	}
	for _, r := range c.ApplicableTCSRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// TCSRatesString renders the applicable rates for messages.
func (c *Config) TCSRatesString() string {
	parts := make([]string, len(c.ApplicableTCSRates))
	for i, r := range c.ApplicableTCSRates {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// IsAcknowledged reports whether a contract status counts as acknowledged.
func (c *Config) IsAcknowledged(status note.ContractStatus) bool {
	for _, s := range c.AcknowledgedContractStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ReferenceWindow returns the reference number uniqueness window containing now.
// The window starts on the first day of the financial year and ends on the last
// day of ReferenceWindowEnd in the following year.
func (c *Config) ReferenceWindow(now time.Time) (time.Time, time.Time) {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	year := now.Year()
	if now.Month() < c.FinancialYearStart {
		year--
	}
	start := time.Date(year, c.FinancialYearStart, 1, 0, 0, 0, 0, loc)
	// Day zero of the next month is the last day of ReferenceWindowEnd.
	end := time.Date(year+1, c.ReferenceWindowEnd+1, 0, 23, 59, 59, int(time.Second-time.Millisecond), loc)
	return start, end
}

// fileConfig mirrors Config for YAML decoding.
type fileConfig struct {
	ValueTolerance               *string  `yaml:"value_tolerance"`
	MaxDecimalPlaces             *int     `yaml:"max_decimal_places"`
	AmountDueSlack               *string  `yaml:"amount_due_slack"`
	ApplicableTCSRates           []string `yaml:"applicable_tcs_rates"`
	AcknowledgedContractStatuses []string `yaml:"acknowledged_contract_statuses"`
	FinancialYearStart           *int     `yaml:"financial_year_start"`
	ReferenceWindowEnd           *int     `yaml:"reference_window_end"`
	Timezone                     *string  `yaml:"timezone"`
}

// LoadConfig reads a YAML configuration on top of the defaults.
// Supports:
//   - value_tolerance: "2"
//   - max_decimal_places: 2
//   - amount_due_slack: "1"
//   - applicable_tcs_rates: ["0.1", "1"]
//   - acknowledged_contract_statuses: [PO_ACKNOWLEDGED, ...]
//   - financial_year_start: 4
//   - reference_window_end: 4
//   - timezone: Asia/Kolkata
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := NewConfig()

	var raw fileConfig
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	var err error
	if raw.ValueTolerance != nil {
		if cfg.ValueTolerance, err = decimal.NewFromString(*raw.ValueTolerance); err != nil {
			return nil, fmt.Errorf("invalid value_tolerance %q: %w", *raw.ValueTolerance, err)
		}
	}
	if raw.MaxDecimalPlaces != nil {
		if *raw.MaxDecimalPlaces < 0 {
			return nil, fmt.Errorf("invalid max_decimal_places %d", *raw.MaxDecimalPlaces)
		}
		cfg.MaxDecimalPlaces = *raw.MaxDecimalPlaces
	}
	if raw.AmountDueSlack != nil {
		if cfg.AmountDueSlack, err = decimal.NewFromString(*raw.AmountDueSlack); err != nil {
			return nil, fmt.Errorf("invalid amount_due_slack %q: %w", *raw.AmountDueSlack, err)
		}
	}
	if raw.ApplicableTCSRates != nil {
		cfg.ApplicableTCSRates = make([]decimal.Decimal, 0, len(raw.ApplicableTCSRates))
		for _, s := range raw.ApplicableTCSRates {
			rate, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("invalid applicable_tcs_rates entry %q: %w", s, err)
			}
			cfg.ApplicableTCSRates = append(cfg.ApplicableTCSRates, rate)
		}
	}
	if raw.AcknowledgedContractStatuses != nil {
		cfg.AcknowledgedContractStatuses = make([]note.ContractStatus, 0, len(raw.AcknowledgedContractStatuses))
		for _, s := range raw.AcknowledgedContractStatuses {
			cfg.AcknowledgedContractStatuses = append(cfg.AcknowledgedContractStatuses, note.ContractStatus(strings.ToUpper(s)))
		}
	}
	if raw.FinancialYearStart != nil {
		if *raw.FinancialYearStart < 1 || *raw.FinancialYearStart > 12 {
			return nil, fmt.Errorf("invalid financial_year_start %d, expected 1-12", *raw.FinancialYearStart)
		}
		cfg.FinancialYearStart = time.Month(*raw.FinancialYearStart)
	}
	if raw.ReferenceWindowEnd != nil {
		if *raw.ReferenceWindowEnd < 1 || *raw.ReferenceWindowEnd > 12 {
			return nil, fmt.Errorf("invalid reference_window_end %d, expected 1-12", *raw.ReferenceWindowEnd)
		}
		cfg.ReferenceWindowEnd = time.Month(*raw.ReferenceWindowEnd)
	}
	if raw.Timezone != nil {
		loc, err := time.LoadLocation(*raw.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", *raw.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}

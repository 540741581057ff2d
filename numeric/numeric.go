// Package numeric holds the rounding, precision and tolerance rules shared by
// every credit note validation.
//
// The value tolerance is a business-agreed band: two aggregate totals reconcile
// when their difference, rounded to three decimals, is at most two currency
// units. It absorbs per-line rounding drift and must not be replaced with a
// generic epsilon.
package numeric

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
)

const (
	// MaxDecimalPlaces is the default precision allowed on unit rates and cess amounts.
	MaxDecimalPlaces = 2

	// TolerancePlaces is the precision the value difference is rounded to before comparison.
	TolerancePlaces = 3
)

var (
	// ValueTolerance is the largest reconciled difference between two totals.
	ValueTolerance = decimal.NewFromInt(2)

	minUnitRate = decimal.RequireFromString("0.01")
)

// RoundOff rounds d to the given number of decimal places, half away from zero.
func RoundOff(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Places returns the number of significant decimal digits of d. Trailing zeros
// do not count: 1.50 has one decimal place.
func Places(d decimal.Decimal) int {
	s := d.String()
	idx := strings.IndexByte(s, '.')
	if idx < 0 {
		return 0
	}
	return len(s) - idx - 1
}

// HasAtMostPlaces reports whether d has no more than places significant decimals.
func HasAtMostPlaces(d decimal.Decimal, places int) bool {
	return Places(d) <= places
}

// Reconciled reports whether two totals agree within the value tolerance band.
func Reconciled(a, b decimal.Decimal) bool {
	return ReconciledWithin(a, b, ValueTolerance)
}

// ReconciledWithin is Reconciled with an explicit tolerance.
func ReconciledWithin(a, b, tolerance decimal.Decimal) bool {
	diff := a.Sub(b).Round(TolerancePlaces).Abs()
	return !diff.GreaterThan(tolerance)
}

// PrecisionError is returned when a numeric field carries more decimals than allowed.
type PrecisionError struct {
	Field    string
	Item     string
	Value    decimal.Decimal
	MaxPlace int
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("InvalidFieldPrecision: %s of item %s (%s) can have at most %d decimal places",
		e.Field, e.Item, e.Value.String(), e.MaxPlace)
}

// fieldValue picks the named numeric field off an item. Absent optional fields
// report ok=false.
func fieldValue(field string, item note.Item) (decimal.Decimal, bool, error) {
	switch field {
	case "cessAmount":
		if item.CessAmount == nil {
			return decimal.Zero, false, nil
		}
		return *item.CessAmount, true, nil
	case "unitRate":
		return item.UnitRate, true, nil
	case "quantity":
		return item.Quantity, true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("unsupported precision field %q", field)
	}
}

// ValidateDecimalPlaces checks the named field on every item against maxPlaces
// and returns a *PrecisionError for the first offending item.
func ValidateDecimalPlaces(field string, items []note.Item, maxPlaces int) error {
	for _, item := range items {
		value, ok, err := fieldValue(field, item)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !HasAtMostPlaces(value, maxPlaces) {
			return &PrecisionError{
				Field:    field,
				Item:     item.ItemCode,
				Value:    value,
				MaxPlace: maxPlaces,
			}
		}
	}
	return nil
}

// UnitRateError is returned when a unit rate is below 0.01 or too precise.
type UnitRateError struct {
	Name     string
	ItemCode string
	UnitRate decimal.Decimal
}

func (e *UnitRateError) Error() string {
	return fmt.Sprintf("(%s - %s) Unit Rate should be positive, not less than 0.01 and can be upto 2 decimal places. Ex: 100.12",
		e.Name, e.ItemCode)
}

// ValidUnitRate reports whether a unit rate is at least 0.01 with at most two decimals.
func ValidUnitRate(rate decimal.Decimal) bool {
	return !rate.LessThan(minUnitRate) && HasAtMostPlaces(rate, MaxDecimalPlaces)
}

// ValidateUnitRates returns a *UnitRateError for the first item with an invalid unit rate.
func ValidateUnitRates(items []note.Item) error {
	for _, item := range items {
		if !ValidUnitRate(item.UnitRate) {
			return &UnitRateError{Name: item.DisplayName(), ItemCode: item.ItemCode, UnitRate: item.UnitRate}
		}
	}
	return nil
}

// NegativeValues reports a message for each of quantity and unit rate that is
// below zero on item.
func NegativeValues(item note.Item) []string {
	var msgs []string
	if item.Quantity.IsNegative() {
		msgs = append(msgs, fmt.Sprintf("quantity of item %s can't be negative", item.DisplayName()))
	}
	if item.UnitRate.IsNegative() {
		msgs = append(msgs, fmt.Sprintf("unit rate of item %s can't be negative", item.DisplayName()))
	}
	return msgs
}

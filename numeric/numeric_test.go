package numeric

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundOff(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"1000.004", 2, "1000"},
		{"1000.005", 2, "1000.01"},
		{"-2.0005", 3, "-2.001"},
		{"99.99", 2, "99.99"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, d(tt.want).Equal(RoundOff(d(tt.in), tt.places)))
		})
	}
}

func TestPlaces(t *testing.T) {
	assert.Equal(t, 0, Places(d("100")))
	assert.Equal(t, 1, Places(d("1.50")))
	assert.Equal(t, 2, Places(d("100.12")))
	assert.Equal(t, 3, Places(d("0.001")))
}

func TestReconciled(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "difference just above band", a: "100.000", b: "97.999", want: false},
		{name: "difference on band edge", a: "100.000", b: "98.000", want: true},
		{name: "negative difference on band edge", a: "98.000", b: "100.000", want: true},
		{name: "equal", a: "10", b: "10", want: true},
		{name: "sub-millicent noise rounds into band", a: "102.0004", b: "100", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconciled(d(tt.a), d(tt.b)))
		})
	}
}

func TestValidateDecimalPlaces(t *testing.T) {
	cess := d("1.234")
	fine := d("1.23")

	err := ValidateDecimalPlaces("cessAmount", []note.Item{
		{ItemCode: "A"},
		{ItemCode: "B", CessAmount: &fine},
	}, MaxDecimalPlaces)
	assert.NoError(t, err)

	err = ValidateDecimalPlaces("cessAmount", []note.Item{
		{ItemCode: "A", CessAmount: &fine},
		{ItemCode: "B", CessAmount: &cess},
	}, MaxDecimalPlaces)
	var precisionErr *PrecisionError
	assert.True(t, errors.As(err, &precisionErr))
	assert.Equal(t, "B", precisionErr.Item)
	assert.Contains(t, err.Error(), "InvalidFieldPrecision")

	err = ValidateDecimalPlaces("colour", []note.Item{{}}, MaxDecimalPlaces)
	assert.Error(t, err)
}

func TestValidateUnitRates(t *testing.T) {
	assert.NoError(t, ValidateUnitRates([]note.Item{{UnitRate: d("0.01")}, {UnitRate: d("100.12")}}))

	for _, rate := range []string{"0", "0.009", "10.123", "-1"} {
		t.Run(rate, func(t *testing.T) {
			err := ValidateUnitRates([]note.Item{{Name: "Steel", ItemCode: "ST-1", UnitRate: d(rate)}})
			var rateErr *UnitRateError
			assert.True(t, errors.As(err, &rateErr))
			assert.Equal(t, "(Steel - ST-1) Unit Rate should be positive, not less than 0.01 and can be upto 2 decimal places. Ex: 100.12", err.Error())
		})
	}
}

func TestNegativeValues(t *testing.T) {
	tests := []struct {
		name string
		item note.Item
		want []string
	}{
		{name: "zero", item: note.Item{Name: "Steel", Quantity: d("0"), UnitRate: d("0")}},
		{name: "positive", item: note.Item{Name: "Steel", Quantity: d("2"), UnitRate: d("10.5")}},
		{name: "negative quantity", item: note.Item{Name: "Steel", Quantity: d("-0.001"), UnitRate: d("1")},
			want: []string{"quantity of item Steel can't be negative"}},
		{name: "both negative", item: note.Item{ItemName: "Bar", Quantity: d("-1"), UnitRate: d("-1")},
			want: []string{"quantity of item Bar can't be negative", "unit rate of item Bar can't be negative"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NegativeValues(tt.item))
		})
	}
}

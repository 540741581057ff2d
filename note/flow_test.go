package note

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestIsNewItemFlow(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  bool
	}{
		{name: "empty", items: nil, want: false},
		{name: "all new", items: []Item{{TaxSchemaVersion: 2}, {TaxSchemaVersion: 2}}, want: true},
		{name: "legacy item", items: []Item{{TaxSchemaVersion: 2}, {}}, want: false},
		{name: "all legacy", items: []Item{{}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewItemFlow(tt.items))
		})
	}
}

func TestIsNewItemFlowSource(t *testing.T) {
	assert.False(t, IsNewItemFlowSource(nil))
	assert.True(t, IsNewItemFlowSource([]SourceItem{{TaxSchemaVersion: 2}}))
	assert.False(t, IsNewItemFlowContract([]ContractLineItem{{TaxSchemaVersion: 1}}))
}

func TestTotals(t *testing.T) {
	items := []Item{
		{Quantity: decimal.NewFromInt(2), UnitRate: decimal.RequireFromString("10.50")},
		{Quantity: decimal.RequireFromString("0.5"), UnitRate: decimal.NewFromInt(4)},
	}
	assert.Equal(t, "23", TotalValue(items).String())

	boq := []BOQItem{{Quantity: decimal.NewFromInt(3), UnitRate: decimal.NewFromInt(7)}}
	assert.Equal(t, "21", TotalBOQValue(boq).String())
}

func TestLinkedBOQItems(t *testing.T) {
	n := &Note{NoInventoryImpactBOQItems: []BOQItem{{ID: "b"}}}
	assert.Equal(t, "b", n.LinkedBOQItems()[0].ID)

	n.BOQItems = []BOQItem{{ID: "a"}}
	assert.Equal(t, "a", n.LinkedBOQItems()[0].ID)
}

func TestFinancePaymentChargeAmount(t *testing.T) {
	p := FinancePayment{Charges: []Charge{
		{Amount: decimal.NewFromInt(5)},
		{Amount: decimal.RequireFromString("2.5")},
	}}
	assert.Equal(t, "7.5", p.ChargeAmount().String())
}

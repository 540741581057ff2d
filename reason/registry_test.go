package reason

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	m, err := r.Lookup(SalesReturn)
	assert.NoError(t, err)
	assert.Equal(t, FromInvoice, m.ItemsFrom)
	assert.True(t, m.HasInventoryImpact)
	assert.True(t, m.IsUserEditable("quantity"))
	assert.False(t, m.IsUserEditable("name"))

	_, err = r.Lookup("Goodwill")
	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Mentioned reason 'Goodwill' does not exist", err.Error())

	codes := r.Codes()
	assert.True(t, slices.Contains(codes, ConditionalQtyReversal))
	for i := 1; i < len(codes); i++ {
		assert.True(t, codes[i-1] < codes[i])
	}
}

func TestMetadataPresenceMarkers(t *testing.T) {
	r := Default()

	waiver, err := r.Lookup(InterestWaiver)
	assert.NoError(t, err)
	code, ok := waiver.MandatedCode()
	assert.True(t, ok)
	assert.Equal(t, "997113", code)
	assert.True(t, waiver.ItemsAreUndeletable())
	qty, ok := waiver.DefaultQuantity.Get()
	assert.True(t, ok)
	assert.True(t, qty.Equal(decimal.NewFromInt(1)))

	sales, err := r.Lookup(SalesReturn)
	assert.NoError(t, err)
	_, ok = sales.MandatedCode()
	assert.False(t, ok)
	assert.False(t, sales.ItemsAreUndeletable())
	_, ok = sales.ItemCodeNames.Get()
	assert.False(t, ok)

	empty := Metadata{HSNSACCodes: Some([]string{})}
	_, ok = empty.MandatedCode()
	assert.False(t, ok)
}

func TestRegistryIsolatesDescriptors(t *testing.T) {
	names := map[string]string{"INT-WAIVER": "Interest Waiver"}
	codes := []string{"997113"}
	r, err := NewRegistry(Metadata{
		Code:          InterestWaiver,
		ItemsFrom:     FromCustom,
		UserEditable:  []string{"unitRate"},
		ItemCodeNames: Some(names),
		HSNSACCodes:   Some(codes),
		TaxRates:      Some(rates("18")),
	})
	assert.NoError(t, err)

	// Changing the inputs after registration leaves the catalogue alone.
	names["INT-WAIVER"] = "Changed"
	codes[0] = "000000"

	m, err := r.Lookup(InterestWaiver)
	assert.NoError(t, err)
	assert.Equal(t, "Interest Waiver", m.ItemCodeNames.Value["INT-WAIVER"])
	assert.Equal(t, "997113", m.HSNSACCodes.Value[0])

	// Changing a looked up descriptor leaves the catalogue alone.
	m.ItemCodeNames.Value["INT-WAIVER"] = "Changed"
	m.HSNSACCodes.Value[0] = "000000"
	m.TaxRates.Value[0] = decimal.NewFromInt(5)
	m.UserEditable[0] = "name"

	again, err := r.Lookup(InterestWaiver)
	assert.NoError(t, err)
	assert.Equal(t, "Interest Waiver", again.ItemCodeNames.Value["INT-WAIVER"])
	assert.Equal(t, "997113", again.HSNSACCodes.Value[0])
	assert.Equal(t, "18", again.TaxRates.Value[0].String())
	assert.Equal(t, []string{"unitRate"}, again.UserEditable)
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	_, err := NewRegistry(Metadata{ItemsFrom: FromInvoice})
	assert.Error(t, err)

	_, err = NewRegistry(Metadata{Code: "X", ItemsFrom: "warehouse"})
	assert.Error(t, err)
}

func TestRegistryWith(t *testing.T) {
	base := Default()
	extended, err := base.With(Metadata{Code: SalesReturn, ItemsFrom: FromCustom})
	assert.NoError(t, err)

	m, err := extended.Lookup(SalesReturn)
	assert.NoError(t, err)
	assert.Equal(t, FromCustom, m.ItemsFrom)

	// The original registry is untouched.
	m, err = base.Lookup(SalesReturn)
	assert.NoError(t, err)
	assert.Equal(t, FromInvoice, m.ItemsFrom)
}

func TestLoadYAML(t *testing.T) {
	descriptors, err := LoadYAML(strings.NewReader(`
- code: Tooling Refund
  itemsFrom: custom
  canDeleteItems: false
  userEditable: [name]
  itemCodeNameMap:
    TOOL-RF: Tooling Refund
  HSN_SACCode: ["998898"]
  taxRate: ["12", "18"]
  defaultQuantity: "1"
  defaultUnit: NOS
  isHSN_SACCodeRestricted: true
- code: Scrap Return
  itemsFrom: invoice
  hasInventoryImpact: true
`))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(descriptors))

	tooling := descriptors[0]
	assert.True(t, tooling.ItemsAreUndeletable())
	assert.True(t, tooling.IsUserEditable("name"))
	assert.True(t, tooling.HSNSACCodeRestricted)
	rates, ok := tooling.TaxRates.Get()
	assert.True(t, ok)
	assert.Equal(t, 2, len(rates))
	unit, ok := tooling.DefaultUnit.Get()
	assert.True(t, ok)
	assert.Equal(t, "NOS", unit)

	scrap := descriptors[1]
	_, ok = scrap.CanDeleteItems.Get()
	assert.False(t, ok)
	_, ok = scrap.TaxRates.Get()
	assert.False(t, ok)

	r, err := Default().With(descriptors...)
	assert.NoError(t, err)
	_, err = r.Lookup("Scrap Return")
	assert.NoError(t, err)
}

func TestLoadYAMLInvalidRate(t *testing.T) {
	_, err := LoadYAML(strings.NewReader(`
- code: Broken
  itemsFrom: custom
  taxRate: ["eighteen"]
`))
	assert.Error(t, err)
}

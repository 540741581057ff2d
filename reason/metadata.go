// Package reason describes the symbolic reasons a credit note can be raised for.
//
// Every reason maps to a Metadata descriptor constraining where items come from,
// which fields a user may edit and which defaults items must carry. The set of
// descriptor fields is closed; optional constraints carry an explicit presence
// marker instead of relying on zero values, so "no HSN code mandated" and
// "mandated empty list" are distinct.
package reason

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ItemsFrom names where a note's items originate.
type ItemsFrom string

const (
	FromInvoice   ItemsFrom = "invoice"
	FromDebitNote ItemsFrom = "debiteNote"
	FromSO        ItemsFrom = "so"
	FromCustom    ItemsFrom = "custom"
)

// Valid reports whether f is a known item source.
func (f ItemsFrom) Valid() bool {
	switch f {
	case FromInvoice, FromDebitNote, FromSO, FromCustom:
		return true
	}
	return false
}

// Optional is a value with an explicit presence marker.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Metadata is the descriptor of a single reason.
type Metadata struct {
	Code               string
	ItemsFrom          ItemsFrom
	HasInventoryImpact bool
	CanDeleteItems     Optional[bool]
	UserEditable       []string
	// ItemCodeNames maps permitted item codes to their canonical names.
	ItemCodeNames Optional[map[string]string]
	// HSNSACCodes lists mandated codes; only the first one is enforced.
	HSNSACCodes                    Optional[[]string]
	TaxRates                       Optional[[]decimal.Decimal]
	DefaultQuantity                Optional[decimal.Decimal]
	DefaultUnit                    Optional[string]
	QuantityValidation             bool
	ValidateAgainstInvoiceUnitRate bool
	DocumentAcknowledgmentCheck    bool
	HSNSACCodeRestricted           bool
}

// Clone returns a copy of m that shares no slices or maps with it.
func (m *Metadata) Clone() Metadata {
	c := *m
	c.UserEditable = slices.Clone(m.UserEditable)
	c.ItemCodeNames.Value = maps.Clone(m.ItemCodeNames.Value)
	c.HSNSACCodes.Value = slices.Clone(m.HSNSACCodes.Value)
	c.TaxRates.Value = slices.Clone(m.TaxRates.Value)
	return c
}

// IsUserEditable reports whether field may be changed by the user.
func (m *Metadata) IsUserEditable(field string) bool {
	return slices.Contains(m.UserEditable, field)
}

// ItemsAreUndeletable reports whether the descriptor explicitly forbids deleting items.
func (m *Metadata) ItemsAreUndeletable() bool {
	v, ok := m.CanDeleteItems.Get()
	return ok && !v
}

// MandatedCode returns the HSN/SAC code every item must carry, if any.
func (m *Metadata) MandatedCode() (string, bool) {
	codes, ok := m.HSNSACCodes.Get()
	if !ok || len(codes) == 0 {
		return "", false
	}
	return codes[0], true
}

package policy

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/creditnote/note"
)

// minHSNPrefix is the shortest chapter-heading prefix a catalogue entry may match.
const minHSNPrefix = 4

// HSNCatalogue validates item codes against a set of known HSN/SAC codes.
// A code is known when it, or one of its prefixes of at least four digits,
// is in the catalogue. An empty or nil catalogue knows every code.
type HSNCatalogue struct {
	codes map[string]struct{}
}

// NewHSNCatalogue creates a catalogue of codes.
func NewHSNCatalogue(codes ...string) *HSNCatalogue {
	c := &HSNCatalogue{codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		c.codes[code] = struct{}{}
	}
	return c
}

// Known reports whether code is in the catalogue.
func (c *HSNCatalogue) Known(code string) bool {
	if c == nil || len(c.codes) == 0 {
		return true
	}
	for n := len(code); n >= minHSNPrefix; n-- {
		if _, ok := c.codes[code[:n]]; ok {
			return true
		}
	}
	return false
}

// InvalidHSN reports new or changed items whose code is missing or unknown.
// Items carried over unchanged from the old note are not rechecked.
func (c *HSNCatalogue) InvalidHSN(_ context.Context, oldItems, newItems []note.Item) ([]string, error) {
	previous := make(map[string]string, len(oldItems))
	for _, item := range oldItems {
		previous[itemKey(item)] = itemCode(item)
	}

	var msgs []string
	for _, item := range newItems {
		code := itemCode(item)
		if code == "" {
			msgs = append(msgs, fmt.Sprintf("HSN or SAC code is required for item %s", item.ItemCode))
			continue
		}
		if old, ok := previous[itemKey(item)]; ok && old == code {
			continue
		}
		if !c.Known(code) {
			msgs = append(msgs, fmt.Sprintf("Invalid HSN/SAC code %s for item %s", code, item.ItemCode))
		}
	}
	return msgs, nil
}

func itemCode(item note.Item) string {
	if item.HSNCode != "" {
		return item.HSNCode
	}
	return item.SACCode
}

func itemKey(item note.Item) string {
	switch {
	case item.ID != "":
		return item.ID
	case item.InvoiceLineItemID != "":
		return "invoice:" + item.InvoiceLineItemID
	case item.ContractLineItemID != "":
		return "contract:" + item.ContractLineItemID
	}
	return "code:" + item.ItemCode
}

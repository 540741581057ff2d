package mutation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func boolPtr(b bool) *bool {
	return &b
}

func newFlowItem(code, qty, rate string) note.Item {
	return note.Item{
		ItemCode:         code,
		Name:             code,
		ItemName:         code,
		Quantity:         d(qty),
		UnitRate:         d(rate),
		Unit:             "NOS",
		HSNCode:          "7208",
		CGST:             d("9"),
		SGST:             d("9"),
		TaxSchemaVersion: 2,
	}
}

type fakeStore struct {
	notes     map[string]*note.Note
	payments  []note.FinancePayment
	customers map[string]*note.Customer
	err       error

	noteLookups     []string
	paymentFilters  []store.PaymentFilter
	referenceFilter store.ReferenceFilter
}

func (f *fakeStore) FindNote(_ context.Context, id string) (*note.Note, error) {
	f.noteLookups = append(f.noteLookups, id)
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return n, nil
}

func (f *fakeStore) FindFinancePayments(_ context.Context, filter store.PaymentFilter) ([]note.FinancePayment, error) {
	f.paymentFilters = append(f.paymentFilters, filter)
	if f.err != nil {
		return nil, f.err
	}
	var out []note.FinancePayment
	for _, p := range f.payments {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) DistinctReferenceNumbers(_ context.Context, filter store.ReferenceFilter) ([]string, error) {
	f.referenceFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	seen := map[string]bool{}
	var out []string
	for _, n := range f.notes {
		if !filter.Matches(n) || n.ReferenceDocumentNumber == "" || seen[n.ReferenceDocumentNumber] {
			continue
		}
		seen[n.ReferenceDocumentNumber] = true
		out = append(out, n.ReferenceDocumentNumber)
	}
	return out, nil
}

func (f *fakeStore) FindCustomer(_ context.Context, id string) (*note.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

// closure allows every change unless locked, and records what it was asked.
type fakeClosure struct {
	locked bool
	seen   []*note.Note
}

func (f *fakeClosure) EditCancelAllowed(old, _ *note.Note, _ string) bool {
	f.seen = append(f.seen, old)
	return !f.locked
}

type fakeEInvoicing bool

func (f fakeEInvoicing) Applicable(*note.Note) bool {
	return bool(f)
}

type fakeHSN struct {
	invalid []string
	calls   int
}

func (f *fakeHSN) InvalidHSN(context.Context, []note.Item, []note.Item) ([]string, error) {
	f.calls++
	return f.invalid, nil
}

type sourceCall struct {
	source  SourceDocument
	message string
}

type fakeSources struct {
	calls []sourceCall
	err   error
}

func (f *fakeSources) ValidateSource(_ context.Context, source SourceDocument, _ *note.Note, message string) error {
	f.calls = append(f.calls, sourceCall{source: source, message: message})
	return f.err
}

type fakeReferenceFormat string

func (f fakeReferenceFormat) ValidateReference(string, *note.Customer) string {
	return string(f)
}

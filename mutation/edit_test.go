package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/creditnote/note"
)

func editPair() (*note.Note, *note.Note) {
	date := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	old := &note.Note{
		ID:                 "cn-1",
		CustomerID:         "cust-1",
		ContractCustomerID: "cust-1",
		NoteDate:           date,
		NoteValue:          d("1000"),
		Items:              []note.Item{newFlowItem("STL-1", "10", "100")},
	}
	updated := *old
	return old, &updated
}

func TestValidateOnEditCustomerAndPayments(t *testing.T) {
	old, updated := editPair()
	updated.CustomerID = "cust-2"
	updated.NoteValue = d("500")

	docs := &fakeStore{payments: []note.FinancePayment{
		{NoteID: "cn-1", Status: note.PaymentSuccess, PaidAmount: d("450"), ChargesTotal: d("60")},
		{NoteID: "cn-2", Status: note.PaymentSuccess, PaidAmount: d("900")},
	}}

	out, err := New(docs).ValidateOnEdit(context.Background(), EditInput{Old: old, New: updated}, true)
	assert.NoError(t, err)
	assert.Equal(t, []string{CustomerChanged, PaidMoreThanNoteValue}, out.Errors)
	assert.True(t, out.Data == updated)

	updated.CustomerID = "cust-1"
	updated.NoteValue = d("510")
	out, err = New(docs).ValidateOnEdit(context.Background(), EditInput{Old: old, New: updated}, true)
	assert.NoError(t, err)
	assert.Zero(t, out.Errors)
}

func TestValidateOnEditBookClosure(t *testing.T) {
	old, updated := editPair()
	updated.NoteDate = old.NoteDate.AddDate(0, -2, 0)

	docs := &fakeStore{notes: map[string]*note.Note{"cn-1": {ID: "cn-1", IsSentToMSD: boolPtr(true)}}}
	closure := &fakeClosure{locked: true}
	svc := New(docs, WithBookClosure(closure), WithEInvoicing(fakeEInvoicing(true)))

	out, err := svc.ValidateOnEdit(context.Background(), EditInput{Old: old, New: updated}, true)
	assert.NoError(t, err)
	assert.Equal(t, []string{NoteDateClosedOnUpdate}, out.Errors)

	// The persisted flag is loaded for the closure check without touching the caller's note.
	assert.Equal(t, []string{"cn-1"}, docs.noteLookups)
	assert.True(t, *closure.seen[0].IsSentToMSD)
	assert.Zero(t, old.IsSentToMSD)

	// Notes outside e-invoicing are not subject to the closure.
	out, err = New(docs, WithBookClosure(closure), WithEInvoicing(fakeEInvoicing(false))).
		ValidateOnEdit(context.Background(), EditInput{Old: old, New: updated}, true)
	assert.NoError(t, err)
	assert.Zero(t, out.Errors)

	// A flag provided by the caller is not reloaded.
	docs.noteLookups = nil
	old.IsSentToMSD = boolPtr(false)
	_, err = svc.ValidateOnEdit(context.Background(), EditInput{Old: old, New: updated}, true)
	assert.NoError(t, err)
	assert.Zero(t, docs.noteLookups)
}

func TestValidateOnEditStoreFailure(t *testing.T) {
	old, updated := editPair()
	boom := errors.New("connection reset")

	_, err := New(&fakeStore{err: boom}).ValidateOnEdit(context.Background(), EditInput{Old: old, New: updated}, true)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "failed to load finance payments of cn-1")
}

func TestValidateOnCancel(t *testing.T) {
	n := &note.Note{ID: "cn-1", Status: note.StatusActive}

	out, err := New(&fakeStore{}, WithBookClosure(&fakeClosure{})).ValidateOnCancel(context.Background(), n, true)
	assert.NoError(t, err)
	assert.Zero(t, out.Errors)

	_, err = New(&fakeStore{}, WithBookClosure(&fakeClosure{locked: true})).ValidateOnCancel(context.Background(), n, false)
	assert.EqualError(t, err, NoteDateClosedOnCancel)
}

package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/validation"
)

func referenceStore() *fakeStore {
	live := func(id, ref string, date time.Time) *note.Note {
		return &note.Note{
			ID:                      id,
			CustomerID:              "cust-1",
			Status:                  note.StatusActive,
			SchemaVersion:           note.CurrentSchemaVersion,
			NoteDate:                date,
			ReferenceDocumentNumber: ref,
		}
	}
	cancelled := live("cn-3", "INV-003", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	cancelled.Status = note.StatusCancelled

	return &fakeStore{
		notes: map[string]*note.Note{
			"cn-1": live("cn-1", "INV-001", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)),
			"cn-2": live("cn-2", "INV-002", time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)),
			"cn-3": cancelled,
		},
		customers: map[string]*note.Customer{"cust-1": {ID: "cust-1", CustomerVerificationType: "GST"}},
	}
}

func referenceService(docs *fakeStore, opts ...Option) *Service {
	cfg := validation.NewConfig()
	cfg.Location = time.UTC
	clock := func() time.Time { return time.Date(2024, time.September, 15, 10, 0, 0, 0, time.UTC) }
	return New(docs, append([]Option{WithConfig(cfg), WithClock(clock)}, opts...)...)
}

func TestValidateReferenceNumberCaseInsensitive(t *testing.T) {
	docs := referenceStore()
	svc := referenceService(docs)

	check, err := svc.ValidateReferenceNumber(context.Background(), ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "inv-001"}, true)
	assert.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, map[string]string{ReferenceErrorKey: ReferenceExists}, check.Errors)

	_, err = svc.ValidateReferenceNumber(context.Background(), ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "inv-001"}, false)
	var verr *validation.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.EqualError(t, err, ReferenceExists)
}

func TestValidateReferenceNumberScope(t *testing.T) {
	docs := referenceStore()
	svc := referenceService(docs)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ReferenceInput
		valid bool
	}{
		{name: "previous financial year", in: ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "INV-002"}, valid: true},
		{name: "cancelled note", in: ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "INV-003"}, valid: true},
		{name: "note itself", in: ReferenceInput{NoteID: "cn-1", CustomerID: "cust-1", ReferenceNumber: "INV-001"}, valid: true},
		{name: "fresh number", in: ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "INV-100"}, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := svc.ValidateReferenceNumber(ctx, tt.in, false)
			assert.NoError(t, err)
			assert.Equal(t, tt.valid, check.Valid)
			assert.Zero(t, check.Errors)
		})
	}

	// The window runs from April 1 to April 30 of the following year.
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), docs.referenceFilter.From)
	assert.Equal(t, time.Date(2025, time.April, 30, 23, 59, 59, 999000000, time.UTC), docs.referenceFilter.To)
}

func TestValidateReferenceNumberFormat(t *testing.T) {
	svc := referenceService(referenceStore(), WithReferenceFormat(fakeReferenceFormat("Reference number format is invalid.")))

	check, err := svc.ValidateReferenceNumber(context.Background(), ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "INV-001"}, true)
	assert.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, ReferenceExists+" Reference number format is invalid.", check.Errors[ReferenceErrorKey])

	check, err = svc.ValidateReferenceNumber(context.Background(), ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "INV 9"}, true)
	assert.NoError(t, err)
	assert.Equal(t, "Reference number format is invalid.", check.Errors[ReferenceErrorKey])
}

func TestValidateReferenceNumberPreconditions(t *testing.T) {
	svc := referenceService(referenceStore())

	check, err := svc.ValidateReferenceNumber(context.Background(), ReferenceInput{CustomerID: "cust-1"}, false)
	assert.NoError(t, err)
	assert.True(t, check.Valid)

	_, err = svc.ValidateReferenceNumber(context.Background(), ReferenceInput{ReferenceNumber: "INV-001"}, false)
	assert.EqualError(t, err, ReferenceCustomerNeeded)

	boom := errors.New("timeout")
	_, err = referenceService(&fakeStore{err: boom}).ValidateReferenceNumber(context.Background(), ReferenceInput{CustomerID: "cust-1", ReferenceNumber: "INV-001"}, true)
	assert.True(t, errors.Is(err, boom))
}

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
)

type amounts struct {
	Amount decimal.Decimal  `bson:"amount"`
	Cess   *decimal.Decimal `bson:"cess,omitempty"`
}

func TestDecimalCodecRoundTrip(t *testing.T) {
	cess := decimal.RequireFromString("0.125")
	data, err := bson.MarshalWithRegistry(Registry(), amounts{Amount: decimal.RequireFromString("1180.50"), Cess: &cess})
	assert.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(data).Lookup("amount").Type)

	var out amounts
	assert.NoError(t, bson.UnmarshalWithRegistry(Registry(), data, &out))
	assert.Equal(t, "1180.5", out.Amount.String())
	assert.Equal(t, "0.125", out.Cess.String())
}

func TestDecimalCodecDecodesLegacyTypes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"double", 12.5, "12.5"},
		{"int32", int32(7), "7"},
		{"int64", int64(9000000000), "9000000000"},
		{"string", "42.10", "42.1"},
		{"null", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.D{{Key: "amount", Value: tt.value}})
			assert.NoError(t, err)

			var out amounts
			assert.NoError(t, bson.UnmarshalWithRegistry(Registry(), data, &out))
			assert.Equal(t, tt.want, out.Amount.String())
		})
	}

	data, err := bson.Marshal(bson.D{{Key: "amount", Value: true}})
	assert.NoError(t, err)
	var out amounts
	assert.Error(t, bson.UnmarshalWithRegistry(Registry(), data, &out))
}

func TestQueries(t *testing.T) {
	hex := "64b7f0c2a1b2c3d4e5f60718"
	oid, err := primitive.ObjectIDFromHex(hex)
	assert.NoError(t, err)

	assert.Equal(t, bson.D{
		{Key: "creditNoteId", Value: "cn-1"},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: note.PaymentFailed}}},
	}, paymentQuery(store.PaymentFilter{NoteID: "cn-1", ExcludeFailed: true}))

	assert.Equal(t, bson.D{
		{Key: "creditNoteId", Value: bson.D{{Key: "$in", Value: bson.A{oid, hex}}}},
	}, paymentQuery(store.PaymentFilter{NoteID: hex}))

	from := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC)
	query := referenceQuery(store.ReferenceFilter{CustomerID: "cust-1", ExcludeNoteID: "cn-1", From: from, To: to})
	assert.Equal(t, bson.D{
		{Key: "customerId", Value: "cust-1"},
		{Key: "schemaVersion", Value: note.CurrentSchemaVersion},
		{Key: "status", Value: bson.D{{Key: "$nin", Value: bson.A{note.StatusDraft, note.StatusCancelled}}}},
		{Key: "reversedByDebitNoteId", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}},
		{Key: "noteDate", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}},
		{Key: "_id", Value: bson.D{{Key: "$nin", Value: bson.A{"cn-1"}}}},
	}, query)
}

func TestIndexModels(t *testing.T) {
	models := indexModels()
	assert.Equal(t, 1, len(models[NotesCollection]))

	// The same reference may recur in another financial year or after a
	// reversal, so the index must not reject duplicates.
	reference := models[NotesCollection][0]
	assert.Equal(t, "customer_reference_lookup", *reference.Options.Name)
	assert.Zero(t, reference.Options.Unique)
	assert.Zero(t, reference.Options.Collation)
	assert.Equal(t, bson.D{
		{Key: "customerId", Value: 1},
		{Key: "noteDate", Value: 1},
		{Key: "referenceDocumentNumber", Value: 1},
	}, reference.Keys.(bson.D))
	assert.Equal(t, bson.D{{Key: "schemaVersion", Value: note.CurrentSchemaVersion}}, reference.Options.PartialFilterExpression.(bson.D))

	assert.Equal(t, 1, len(models[PaymentsCollection]))
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find note", func(mt *mtest.T) {
		value, err := primitive.ParseDecimal128("118.50")
		assert.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "billing.creditnotes", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "cn-1"},
			{Key: "status", Value: "ACTIVE"},
			{Key: "noteValue", Value: value},
		}))

		n, err := New(mt.Client, "billing").FindNote(context.Background(), "cn-1")
		assert.NoError(mt, err)
		assert.Equal(mt, note.StatusActive, n.Status)
		assert.Equal(mt, "118.5", n.NoteValue.String())
	})

	mt.Run("note not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "billing.creditnotes", mtest.FirstBatch))

		_, err := New(mt.Client, "billing").FindNote(context.Background(), "cn-404")
		assert.IsError(mt, err, store.ErrNotFound)
	})

	mt.Run("find payments", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "billing.financepayments", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "pay-1"}, {Key: "creditNoteId", Value: "cn-1"}, {Key: "paidAmount", Value: 100.25}},
			bson.D{{Key: "_id", Value: "pay-2"}, {Key: "creditNoteId", Value: "cn-1"}, {Key: "charges", Value: "5"}},
		))

		payments, err := New(mt.Client, "billing").FindFinancePayments(context.Background(), store.PaymentFilter{NoteID: "cn-1"})
		assert.NoError(mt, err)
		assert.Equal(mt, 2, len(payments))
		assert.Equal(mt, "100.25", payments[0].PaidAmount.String())
		assert.Equal(mt, "5", payments[1].ChargesTotal.String())
	})

	mt.Run("distinct reference numbers", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"REF-2", "", "REF-1"}}))

		refs, err := New(mt.Client, "billing").DistinctReferenceNumbers(context.Background(), store.ReferenceFilter{CustomerID: "cust-1"})
		assert.NoError(mt, err)
		assert.Equal(mt, []string{"REF-1", "REF-2"}, refs)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query", Name: "BadValue"}))

		_, err := New(mt.Client, "billing").FindFinancePayments(context.Background(), store.PaymentFilter{NoteID: "cn-1"})
		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "find payments of cn-1")
	})
}

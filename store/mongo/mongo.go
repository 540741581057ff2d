// Package mongo implements store.DocumentStore on MongoDB.
//
// Documents are read from the creditnotes, financepayments and customers
// collections of one database. Identifiers may be stored either as ObjectIDs
// or as strings; lookups match both.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
)

const (
	NotesCollection     = "creditnotes"
	PaymentsCollection  = "financepayments"
	CustomersCollection = "customers"
)

// Store reads documents from a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ store.DocumentStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every query at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Connect dials uri and returns a store over database.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(Registry()))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client, database, opts...), nil
}

// New returns a store over database using an existing client.
func New(client *mongo.Client, database string, opts ...Option) *Store {
	s := &Store{
		client: client,
		db:     client.Database(database, options.Database().SetRegistry(Registry())),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindNote returns the credit note with id.
func (s *Store) FindNote(ctx context.Context, id string) (*note.Note, error) {
	var n note.Note
	if err := s.findOne(ctx, NotesCollection, id, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// FindCustomer returns the customer with id.
func (s *Store) FindCustomer(ctx context.Context, id string) (*note.Customer, error) {
	var c note.Customer
	if err := s.findOne(ctx, CustomersCollection, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) findOne(ctx context.Context, collection, id string, out interface{}) error {
	filter := bson.D{{Key: "_id", Value: idMatch(id)}}
	s.logger.Debug("mongo find one", zap.String("collection", collection), zap.String("id", id))

	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s %s: %w", collection, id, err)
	}
	return nil
}

// FindFinancePayments returns the payments matching filter.
func (s *Store) FindFinancePayments(ctx context.Context, filter store.PaymentFilter) ([]note.FinancePayment, error) {
	query := paymentQuery(filter)
	s.logger.Debug("mongo find", zap.String("collection", PaymentsCollection), zap.String("note_id", filter.NoteID))

	cur, err := s.db.Collection(PaymentsCollection).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find payments of %s: %w", filter.NoteID, err)
	}
	var payments []note.FinancePayment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments of %s: %w", filter.NoteID, err)
	}
	return payments, nil
}

// DistinctReferenceNumbers returns the sorted distinct non-empty reference
// numbers of the notes matching filter.
func (s *Store) DistinctReferenceNumbers(ctx context.Context, filter store.ReferenceFilter) ([]string, error) {
	query := referenceQuery(filter)
	s.logger.Debug("mongo distinct", zap.String("collection", NotesCollection), zap.String("customer_id", filter.CustomerID))

	values, err := s.db.Collection(NotesCollection).Distinct(ctx, "referenceDocumentNumber", query)
	if err != nil {
		return nil, fmt.Errorf("distinct reference numbers of %s: %w", filter.CustomerID, err)
	}

	refs := make([]string, 0, len(values))
	for _, v := range values {
		if ref, ok := v.(string); ok && ref != "" {
			refs = append(refs, ref)
		}
	}
	slices.Sort(refs)
	return refs, nil
}

// EnsureIndexes creates the indexes the store's queries rely on. Reference
// numbers are only unique within a financial year window and among notes not
// reversed by a debit note, so the reference index is a lookup index and
// uniqueness stays with the validator.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	var errs []error
	for collection, models := range indexModels() {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			s.logger.Warn("failed to create mongo indexes", zap.String("collection", collection), zap.Error(err))
			errs = append(errs, fmt.Errorf("create indexes on %s: %w", collection, err))
			continue
		}
		s.logger.Debug("ensured mongo indexes", zap.String("collection", collection), zap.Int("count", len(models)))
	}
	return errors.Join(errs...)
}

func indexModels() map[string][]mongo.IndexModel {
	referenceLookup := options.Index().
		SetName("customer_reference_lookup").
		SetPartialFilterExpression(bson.D{
			{Key: "schemaVersion", Value: note.CurrentSchemaVersion},
		})

	return map[string][]mongo.IndexModel{
		NotesCollection: {
			{
				Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "noteDate", Value: 1}, {Key: "referenceDocumentNumber", Value: 1}},
				Options: referenceLookup,
			},
		},
		PaymentsCollection: {
			{
				Keys:    bson.D{{Key: "creditNoteId", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("credit_note_status"),
			},
		},
	}
}

// idMatch matches id stored either as an ObjectID or as a plain string.
func idMatch(id string) interface{} {
	values := idValues(id)
	if len(values) == 1 {
		return id
	}
	return bson.D{{Key: "$in", Value: values}}
}

func idValues(id string) bson.A {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.A{oid, id}
	}
	return bson.A{id}
}

func paymentQuery(f store.PaymentFilter) bson.D {
	query := bson.D{{Key: "creditNoteId", Value: idMatch(f.NoteID)}}
	if f.ExcludeFailed {
		query = append(query, bson.E{Key: "status", Value: bson.D{{Key: "$ne", Value: note.PaymentFailed}}})
	}
	return query
}

func referenceQuery(f store.ReferenceFilter) bson.D {
	query := bson.D{
		{Key: "customerId", Value: idMatch(f.CustomerID)},
		{Key: "schemaVersion", Value: note.CurrentSchemaVersion},
		{Key: "status", Value: bson.D{{Key: "$nin", Value: bson.A{note.StatusDraft, note.StatusCancelled}}}},
		{Key: "reversedByDebitNoteId", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}},
		{Key: "noteDate", Value: bson.D{{Key: "$gte", Value: f.From}, {Key: "$lte", Value: f.To}}},
	}
	if f.ExcludeNoteID != "" {
		query = append(query, bson.E{Key: "_id", Value: bson.D{{Key: "$nin", Value: idValues(f.ExcludeNoteID)}}})
	}
	return query
}

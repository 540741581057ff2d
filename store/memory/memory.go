// Package memory implements store.DocumentStore over in-process maps. It backs
// the CLI, which seeds it from fixture bundles, and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/creditnote/loader"
	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
)

// Store is a concurrency-safe in-memory document store.
type Store struct {
	mu        sync.RWMutex
	notes     map[string]note.Note
	payments  []note.FinancePayment
	customers map[string]note.Customer
}

var _ store.DocumentStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		notes:     map[string]note.Note{},
		customers: map[string]note.Customer{},
	}
}

// FromBundle seeds a store with the persisted documents of b: its notes,
// payments and customers, the old note, and the proposed note unless a
// persisted note with the same id exists.
func FromBundle(b *loader.Bundle) *Store {
	s := New()
	for _, n := range b.Notes {
		s.PutNote(n)
	}
	if b.OldNote != nil {
		s.PutNote(*b.OldNote)
	}
	if b.Note != nil && b.Note.ID != "" {
		if _, ok := s.notes[b.Note.ID]; !ok {
			s.PutNote(*b.Note)
		}
	}
	for _, p := range b.Payments {
		s.PutPayment(p)
	}
	for _, c := range b.Customers {
		s.PutCustomer(c)
	}
	return s
}

// PutNote stores n, assigning a new id when it has none, and returns the id.
func (s *Store) PutNote(n note.Note) string {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n.ID] = n
	return n.ID
}

// PutPayment stores p, assigning a new id when it has none, and returns the id.
func (s *Store) PutPayment(p note.FinancePayment) string {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, p)
	return p.ID
}

// PutCustomer stores c.
func (s *Store) PutCustomer(c note.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// FindNote returns a copy of the note with id.
func (s *Store) FindNote(_ context.Context, id string) (*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &n, nil
}

// FindFinancePayments returns the payments matching filter in insertion order.
func (s *Store) FindFinancePayments(_ context.Context, filter store.PaymentFilter) ([]note.FinancePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found []note.FinancePayment
	for _, p := range s.payments {
		if filter.Matches(p) {
			found = append(found, p)
		}
	}
	return found, nil
}

// DistinctReferenceNumbers returns the sorted distinct non-empty reference
// numbers of the notes matching filter.
func (s *Store) DistinctReferenceNumbers(_ context.Context, filter store.ReferenceFilter) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []string
	for _, n := range s.notes {
		if n.ReferenceDocumentNumber == "" || !filter.Matches(&n) {
			continue
		}
		if !slices.Contains(refs, n.ReferenceDocumentNumber) {
			refs = append(refs, n.ReferenceDocumentNumber)
		}
	}
	slices.Sort(refs)
	return refs, nil
}

// FindCustomer returns the customer with id.
func (s *Store) FindCustomer(_ context.Context, id string) (*note.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

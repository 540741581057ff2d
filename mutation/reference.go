package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/store"
	"github.com/robinvdvleuten/creditnote/validation"
)

// Reference number messages.
const (
	ReferenceErrorKey       = "refNumber"
	ReferenceExists         = "Customer Credit note Reference Number for the customer already exists"
	ReferenceCustomerNeeded = "Reference number and customer Id is required for duplicate check"
)

// ReferenceInput is a reference number proposed for a note.
type ReferenceInput struct {
	// NoteID excludes the note itself from the duplicate search. Empty for new notes.
	NoteID          string
	CustomerID      string
	ReferenceNumber string
}

// ReferenceCheck is the result of a reference number validation.
type ReferenceCheck struct {
	Valid  bool
	Errors map[string]string
}

// ValidateReferenceNumber checks that a customer reference number is well
// formed and unique, ignoring case, among the customer's live notes of the
// current reference window (see validation.Config.ReferenceWindow).
func (s *Service) ValidateReferenceNumber(ctx context.Context, in ReferenceInput, preview bool) (ReferenceCheck, error) {
	if in.ReferenceNumber == "" {
		return ReferenceCheck{Valid: true}, nil
	}

	c := s.begin(ctx, "reference", in.NoteID)
	if in.CustomerID == "" {
		err := validation.Abort(ReferenceCustomerNeeded)
		c.end(nil, err)
		return ReferenceCheck{}, err
	}

	customer, err := s.store.FindCustomer(ctx, in.CustomerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		err = fmt.Errorf("failed to load customer %s: %w", in.CustomerID, err)
		c.end(nil, err)
		return ReferenceCheck{}, err
	}

	from, to := s.configFor(ctx).ReferenceWindow(s.now())
	existing, err := s.store.DistinctReferenceNumbers(ctx, store.ReferenceFilter{
		CustomerID:    in.CustomerID,
		ExcludeNoteID: in.NoteID,
		From:          from,
		To:            to,
	})
	if err != nil {
		err = fmt.Errorf("failed to load reference numbers of customer %s: %w", in.CustomerID, err)
		c.end(nil, err)
		return ReferenceCheck{}, err
	}

	var msgs []string
	for _, ref := range existing {
		if strings.EqualFold(ref, in.ReferenceNumber) {
			msgs = append(msgs, ReferenceExists)
			break
		}
	}
	if s.references != nil {
		msgs = append(msgs, s.references.ValidateReference(in.ReferenceNumber, customerOrEmpty(customer)))
	}
	msgs = validation.FilterErrors(msgs)

	check := ReferenceCheck{Valid: len(msgs) == 0}
	if !check.Valid {
		check.Errors = map[string]string{ReferenceErrorKey: strings.Join(msgs, " ")}
	}

	if !check.Valid && !preview {
		err := &validation.ValidationError{Messages: []string{check.Errors[ReferenceErrorKey]}}
		c.end(nil, err)
		return ReferenceCheck{}, err
	}
	c.end(msgs, nil)
	return check, nil
}

func customerOrEmpty(customer *note.Customer) *note.Customer {
	if customer == nil {
		return &note.Customer{}
	}
	return customer
}

// Package mutation validates the lifecycle transitions of a credit note:
// save and preview, edit, cancel, reversal and e-invoicing submission, plus
// the reference number and payment schedule checks that go with them.
//
// Every entry point takes a preview flag. In preview mode business rule
// violations come back in Outcome.Errors; in commit mode they are returned as
// a single *validation.ValidationError. Structural failures are always
// returned as *validation.AbortError.
package mutation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/creditnote/note"
	"github.com/robinvdvleuten/creditnote/reason"
	"github.com/robinvdvleuten/creditnote/rules"
	"github.com/robinvdvleuten/creditnote/store"
	"github.com/robinvdvleuten/creditnote/telemetry"
	"github.com/robinvdvleuten/creditnote/validation"
)

// Service runs credit note mutation validators. Collaborators are read-only,
// so a Service is safe for concurrent use.
type Service struct {
	store      store.DocumentStore
	registry   *reason.Registry
	config     *validation.Config
	taxRates   TaxRateResolver
	hsn        HSNValidator
	closure    BookClosure
	einvoicing EInvoicing
	references ReferenceFormatValidator
	sources    SourceDocumentValidator
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry sets the reason registry. Defaults to reason.Default().
func WithRegistry(registry *reason.Registry) Option {
	return func(s *Service) { s.registry = registry }
}

// WithConfig pins the configuration. Without it the configuration is taken
// from the context of each call.
func WithConfig(cfg *validation.Config) Option {
	return func(s *Service) { s.config = cfg }
}

// WithTaxRates sets the tax rate resolver.
func WithTaxRates(resolver TaxRateResolver) Option {
	return func(s *Service) { s.taxRates = resolver }
}

// WithHSNValidator sets the HSN/SAC validator. Without one HSN codes are not checked.
func WithHSNValidator(v HSNValidator) Option {
	return func(s *Service) { s.hsn = v }
}

// WithBookClosure sets the book closure rule. Without one every change is allowed.
func WithBookClosure(b BookClosure) Option {
	return func(s *Service) { s.closure = b }
}

// WithEInvoicing sets the e-invoicing applicability rule. Without one no note
// is subject to e-invoicing.
func WithEInvoicing(e EInvoicing) Option {
	return func(s *Service) { s.einvoicing = e }
}

// WithReferenceFormat sets the reference number format validator.
func WithReferenceFormat(v ReferenceFormatValidator) Option {
	return func(s *Service) { s.references = v }
}

// WithSourceValidator sets the source document validator.
func WithSourceValidator(v SourceDocumentValidator) Option {
	return func(s *Service) { s.sources = v }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the clock used for financial year windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service reading documents from docs.
func New(docs store.DocumentStore, opts ...Option) *Service {
	s := &Service{
		store:    docs,
		registry: reason.Default(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the reason registry in use.
func (s *Service) Registry() *reason.Registry {
	return s.registry
}

func (s *Service) configFor(ctx context.Context) *validation.Config {
	if s.config != nil {
		return s.config
	}
	return validation.ConfigFromContext(ctx)
}

func (s *Service) evaluator() *rules.Evaluator {
	return rules.NewEvaluator(s.registry, s.taxRates)
}

// NoteDateField is the field book closure guards.
const NoteDateField = "noteDate"

func (s *Service) noteDateAllowed(old, updated *note.Note) bool {
	if s.closure == nil {
		return true
	}
	return s.closure.EditCancelAllowed(old, updated, NoteDateField)
}

func (s *Service) eInvoicingApplicable(n *note.Note) bool {
	return s.einvoicing != nil && s.einvoicing.Applicable(n)
}

// call carries the logger and timer of one validator invocation.
type call struct {
	log   *zap.Logger
	timer telemetry.Timer
}

func (s *Service) begin(ctx context.Context, operation, noteID string) *call {
	log := s.logger.With(
		zap.String("validation_id", uuid.NewString()),
		zap.String("operation", operation),
		zap.String("note_id", noteID),
	)
	log.Debug("validating credit note")
	return &call{log: log, timer: telemetry.StartTimer(ctx, "validate."+operation)}
}

// end logs the result of a call and stops its timer.
func (c *call) end(errs []string, err error) {
	c.timer.End()
	switch {
	case err != nil:
		c.log.Info("credit note rejected", zap.Error(err))
	case len(errs) > 0:
		c.log.Info("credit note has validation errors", zap.Int("errors", len(errs)))
	default:
		c.log.Debug("credit note valid")
	}
}

// finish flushes acc and logs the result.
func finish[T any](c *call, acc *validation.Accumulator, preview bool, data T) (validation.Outcome[T], error) {
	out, err := validation.Finish(acc, preview, data)
	c.end(out.Errors, err)
	return out, err
}

// fail logs err and returns it.
func fail[T any](c *call, err error) (validation.Outcome[T], error) {
	c.end(nil, err)
	return validation.Outcome[T]{}, err
}

// Package creditnote validates proposed credit note mutations (save, edit,
// cancel, reversal, reference numbering, payment scheduling and e-invoicing
// submission) before they are persisted.
//
// New wires a mutation.Service with the default policies:
//
//	docs := memory.New()
//	svc := creditnote.New(docs, nil)
//	out, err := svc.ValidateOnSave(ctx, mutation.SaveInput{Note: n}, true)
package creditnote

import (
	"github.com/robinvdvleuten/creditnote/mutation"
	"github.com/robinvdvleuten/creditnote/policy"
	"github.com/robinvdvleuten/creditnote/store"
)

// New creates a validation service over docs. A nil policies uses
// policy.DefaultConfig. Options are applied after the policies and may
// replace any of them.
func New(docs store.DocumentStore, policies *policy.Config, opts ...mutation.Option) *mutation.Service {
	if policies == nil {
		policies = policy.DefaultConfig()
	}
	return mutation.New(docs, append(policies.Options(), opts...)...)
}

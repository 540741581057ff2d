// Package loader reads fixture bundles: JSON documents describing a proposed
// credit note together with the persisted documents it is validated against.
//
// A bundle may list other bundle files under "include". By default includes
// are left unresolved; with WithFollowIncludes they are loaded recursively,
// relative to the including file, and merged into one bundle. A file included
// more than once is only read the first time.
//
// Example usage:
//
//	ldr := loader.New(loader.WithFollowIncludes())
//	result, err := ldr.Load(ctx, "fixtures/cn-1.json")
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/creditnote/note"
)

// Bundle is the content of one fixture file.
type Bundle struct {
	Include []string `json:"include,omitempty"`

	// Note is the proposed state under validation.
	Note *note.Note `json:"note,omitempty"`
	// OldNote is the persisted state the proposal replaces.
	OldNote   *note.Note      `json:"oldNote,omitempty"`
	Invoice   *note.Invoice   `json:"invoice,omitempty"`
	DebitNote *note.DebitNote `json:"debitNote,omitempty"`
	Contract  *note.Contract  `json:"contract,omitempty"`

	Notes     []note.Note            `json:"notes,omitempty"`
	Payments  []note.FinancePayment  `json:"payments,omitempty"`
	Customers []note.Customer        `json:"customers,omitempty"`
	Schedule  []note.PaymentSchedule `json:"schedule,omitempty"`
}

// Result is a loaded bundle with the files it came from.
type Result struct {
	Bundle *Bundle
	// Root is the absolute path of the loaded file.
	Root string
	// Includes lists the absolute paths of every file merged into Bundle,
	// in load order. Empty unless includes are followed.
	Includes []string
}

// Loader loads fixture bundles.
type Loader struct {
	FollowIncludes bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithFollowIncludes resolves and merges included bundles.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads filename.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	root, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	if !l.FollowIncludes {
		b, err := readBundle(filename)
		if err != nil {
			return nil, err
		}
		return &Result{Bundle: b, Root: root}, nil
	}

	state := &loaderState{visited: map[string]bool{}}
	b, err := state.loadRecursive(ctx, root)
	if err != nil {
		return nil, err
	}
	return &Result{Bundle: b, Root: root, Includes: state.order}, nil
}

// LoadBytes decodes a single bundle without resolving includes.
func LoadBytes(data []byte) (*Bundle, error) {
	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func readBundle(filename string) (*Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	b, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return b, nil
}

type loaderState struct {
	visited map[string]bool
	order   []string
}

func (l *loaderState) loadRecursive(ctx context.Context, path string) (*Bundle, error) {
	if l.visited[path] {
		return &Bundle{}, nil
	}
	l.visited[path] = true

	b, err := readBundle(path)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	for _, inc := range b.Include {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !filepath.IsAbs(inc) {
			inc = filepath.Join(baseDir, inc)
		}
		inc = filepath.Clean(inc)
		if !l.visited[inc] {
			l.order = append(l.order, inc)
		}

		included, err := l.loadRecursive(ctx, inc)
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", path, err)
		}
		merge(b, included)
	}
	b.Include = nil

	return b, nil
}

// merge folds src into dst. Documents already set on dst take precedence;
// collections are appended.
func merge(dst, src *Bundle) {
	if dst.Note == nil {
		dst.Note = src.Note
	}
	if dst.OldNote == nil {
		dst.OldNote = src.OldNote
	}
	if dst.Invoice == nil {
		dst.Invoice = src.Invoice
	}
	if dst.DebitNote == nil {
		dst.DebitNote = src.DebitNote
	}
	if dst.Contract == nil {
		dst.Contract = src.Contract
	}
	if dst.Schedule == nil {
		dst.Schedule = src.Schedule
	}
	dst.Notes = append(dst.Notes, src.Notes...)
	dst.Payments = append(dst.Payments, src.Payments...)
	dst.Customers = append(dst.Customers, src.Customers...)
}

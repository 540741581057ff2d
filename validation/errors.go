// Package validation provides the error model shared by every credit note
// validator.
//
// Validators distinguish two outcomes:
//
//   - Aborted: a structural precondition failed (unknown reason, missing source
//     document, invalid reversal target). Nothing downstream is meaningful, so
//     the validator returns an *AbortError immediately.
//   - Collected: business rules were evaluated and their messages gathered in an
//     Accumulator. In commit mode a non-empty set is returned as a single
//     *ValidationError; in preview mode it is returned in Outcome.Errors.
//
// Callers tell the two apart with errors.As.
package validation

import (
	"strings"
)

// AbortError signals a structural precondition failure.
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	return e.Reason
}

// Abort creates an *AbortError.
func Abort(reason string) *AbortError {
	return &AbortError{Reason: reason}
}

// ValidationError aggregates the deduplicated business rule violations of one call.
type ValidationError struct {
	Messages []string
}

// Error joins all messages with newlines.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// FilterErrors drops empty messages and exact duplicates, keeping the first
// occurrence of each message in order.
func FilterErrors(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(messages))
	filtered := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg == "" {
			continue
		}
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		filtered = append(filtered, msg)
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

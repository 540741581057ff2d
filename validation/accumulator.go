package validation

import "fmt"

// Outcome is the result of a validator call that did not fail.
//
// Errors is nil when no rule was violated. It is only ever non-nil in preview
// mode; in commit mode violations are returned as a *ValidationError instead.
type Outcome[T any] struct {
	Errors []string
	Data   T
}

// HasErrors reports whether any rule was violated.
func (o Outcome[T]) HasErrors() bool {
	return len(o.Errors) > 0
}

// Accumulator collects business rule messages for one validator call.
type Accumulator struct {
	messages []string
}

// Add records a message.
func (a *Accumulator) Add(msg string) {
	a.messages = append(a.messages, msg)
}

// Addf records a formatted message.
func (a *Accumulator) Addf(format string, args ...interface{}) {
	a.messages = append(a.messages, fmt.Sprintf(format, args...))
}

// Merge records several messages at once.
func (a *Accumulator) Merge(messages ...string) {
	a.messages = append(a.messages, messages...)
}

// Len returns the number of raw messages recorded.
func (a *Accumulator) Len() int {
	return len(a.messages)
}

// Filtered returns the deduplicated messages.
func (a *Accumulator) Filtered() []string {
	return FilterErrors(a.messages)
}

// Flush returns the deduplicated messages. In commit mode (preview false) any
// message yields a *ValidationError and no messages.
func (a *Accumulator) Flush(preview bool) ([]string, error) {
	filtered := a.Filtered()
	if len(filtered) == 0 {
		return nil, nil
	}
	if !preview {
		return nil, &ValidationError{Messages: filtered}
	}
	return filtered, nil
}

// Finish flushes the accumulator into an Outcome carrying data.
func Finish[T any](a *Accumulator, preview bool, data T) (Outcome[T], error) {
	errs, err := a.Flush(preview)
	if err != nil {
		return Outcome[T]{}, err
	}
	return Outcome[T]{Errors: errs, Data: data}, nil
}

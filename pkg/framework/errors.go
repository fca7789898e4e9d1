package framework

import (
	"context"
	"errors"
	"strings"
)

// AggregatedError collects errors from runners and closers.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := make([]string, 0, len(e.Errors)+1)
	msg = append(msg, "Multiple errors:")
	for _, err := range e.Errors {
		msg = append(msg, err.Error())
	}
	return strings.Join(msg, "\n")
}

// Unwrap allows errors.Is and errors.As to examine every error.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add adds errors to be aggregated. nil and context.Canceled are skipped,
// the latter being the normal result of a stopped runner.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil if nothing was added.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

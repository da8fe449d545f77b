package finder

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSizeRule reports a size rule outside the comparator/number/magnitude grammar
	ErrInvalidSizeRule = errors.New("invalid size rule")

	// ErrNilPredicate reports a predicate that cannot be called
	ErrNilPredicate = errors.New("predicate is nil")
)

// ConfigError represents a configuration mistake detected when a search starts.
// It aborts the search and is never absorbed.
type ConfigError struct {
	// Method is the builder method that received the bad value
	Method string
	// Value is the offending input, when it has a printable form
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid usage of %s(): %v", e.Method, e.Err)
	}
	return fmt.Sprintf("invalid usage of %s(%q): %v", e.Method, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

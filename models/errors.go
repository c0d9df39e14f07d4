package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a row or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned on unique constraint violations.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidCredentials is returned when a password does not match its stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RuleError is a business validation failure. Handlers answer it with 400.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

// Rule builds a RuleError.
func Rule(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}

// IsRule reports whether err is (or wraps) a RuleError.
func IsRule(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

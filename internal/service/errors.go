package service

import (
	"errors"
	"fmt"
)

// The failure kinds a caller can receive from this package. Validation and
// verification failures carry the offending field so clients can correct
// input without guessing; transient store failures are retryable and must
// never be conflated with a definitive absent/mismatch outcome.

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type VerificationErrorKind int

const (
	VerificationMissingOrExpired VerificationErrorKind = iota
	VerificationMismatch
)

type VerificationError struct {
	Kind VerificationErrorKind
}

func (e *VerificationError) Error() string {
	if e.Kind == VerificationMismatch {
		return "sms code mismatch"
	}
	return "sms code missing or expired"
}

type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// TransientStoreError marks a store call that timed out or found the backend
// unavailable. The whole operation is safe to retry; nothing was partially
// applied.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store failure in %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// IntegrityError signals an unexpected store inconsistency. It is not
// retryable and is surfaced as-is.
type IntegrityError struct {
	Detail string
}

func (e *IntegrityError) Error() string {
	return "store integrity violation: " + e.Detail
}

func IsTransient(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}

package journal

import (
	"errors"
	"strings"
)

// Domain errors for the journal core. Validation failures are deterministic
// for a given input and must not be retried; only ErrConflict and
// ErrStorage are retry-eligible.
var (
	// ErrNotFound indicates the owner or the referenced item is absent.
	ErrNotFound = errors.New("journal: not found")

	// Guard failures.
	ErrCapacityExceeded = errors.New("journal: active emotion capacity exceeded")
	ErrDuplicateKey     = errors.New("journal: duplicate key among active items")

	// Referential and field validation failures.
	ErrInvalidDate          = errors.New("journal: invalid date")
	ErrUnknownOrDeletedEmotion = errors.New("journal: unknown or deleted emotion")
	ErrDuplicateEmotionRef  = errors.New("journal: emotion referenced more than once")
	ErrNoEmotions           = errors.New("journal: day requires at least one emotion")
	ErrInvalidName          = errors.New("journal: invalid emotion name")
	ErrInvalidColor         = errors.New("journal: invalid color")
	ErrDescriptionTooLong   = errors.New("journal: description too long")

	// Storage collaborator outcomes.
	ErrConflict = errors.New("journal: concurrent write conflict")
	ErrStorage  = errors.New("journal: storage failure")
)

// FieldError scopes a validation failure to the offending field.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

// ValidationErrors collects every violation produced by one mutation so a
// caller can report them all at once. errors.Is sees through the list.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual violations to errors.Is / errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Messages renders the violations for transport payloads.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return msgs
}

package locatex

import "github.com/cockroachdb/errors"

// ErrorCode represents specific error codes for locate operations.
type ErrorCode int

const (
	// ErrCodeEmptyQuery is returned when an empty query is provided.
	ErrCodeEmptyQuery ErrorCode = iota + 1000

	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption

	// ErrCodeCanceled is returned when a locate operation is canceled.
	ErrCodeCanceled

	// ErrCodeGeometryUnavailable is returned by a Document when an element has no layout box.
	ErrCodeGeometryUnavailable
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeEmptyQuery:
		return "empty query"
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeGeometryUnavailable:
		return "geometry unavailable"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors that can be returned by locate operations.
var (
	// ErrEmptyQuery is returned when an empty or blank query is provided.
	ErrEmptyQuery = newErrorWithCode(ErrCodeEmptyQuery, "locatex: empty query")

	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "locatex: invalid option")

	// ErrCanceled is returned when a locate operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "locatex: operation canceled")

	// ErrGeometryUnavailable is returned when an element is detached or layout is unavailable.
	ErrGeometryUnavailable = newErrorWithCode(ErrCodeGeometryUnavailable, "locatex: geometry unavailable")
)

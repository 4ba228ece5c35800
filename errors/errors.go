// Package errors provides error handling for protix.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context
//	if err := parse(r); err != nil {
//	    return errors.Wrap(err, "failed to parse FASTA")
//	}
//
//	// Classify a row failure
//	return errors.NewMalformedRowError("taxonomy", 12, "expected 2 fields, got %d", n)
//
//	// Check errors
//	if errors.IsMalformedRow(err) {
//	    // report the bad input
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// GetStack is an alias for GetReportableStackTrace for convenience.
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors. Use these with errors.Is() and wrap them with
// errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrMalformedRow indicates a tabular row has the wrong field count
	// or a value that cannot be parsed
	ErrMalformedRow = New("malformed row")

	// ErrUnknownCategory indicates a GO subontology code outside BPO/CCO/MFO
	ErrUnknownCategory = New("unknown subontology category")

	// ErrMissingSource indicates an input source could not be opened or read
	ErrMissingSource = New("missing source")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsMalformedRow checks if an error is or wraps ErrMalformedRow
func IsMalformedRow(err error) bool {
	return err != nil && Is(err, ErrMalformedRow)
}

// IsUnknownCategory checks if an error is or wraps ErrUnknownCategory
func IsUnknownCategory(err error) bool {
	return err != nil && Is(err, ErrUnknownCategory)
}

// IsMissingSource checks if an error is or wraps ErrMissingSource
func IsMissingSource(err error) bool {
	return err != nil && Is(err, ErrMissingSource)
}

// NewMalformedRowError creates a malformed-row error annotated with the
// source name and 1-based line number.
func NewMalformedRowError(source string, line int, format string, args ...interface{}) error {
	return Wrapf(Wrap(ErrMalformedRow, Newf(format, args...).Error()), "%s line %d", source, line)
}

// WrapMissingSource wraps an open failure as a missing-source error. The
// original error stays in the chain.
func WrapMissingSource(err error, path string) error {
	return WithHintf(
		Mark(Wrapf(err, "source %s", path), ErrMissingSource),
		"check that %s exists and is readable", path)
}

// NewReadError marks a failure while reading source as a missing-source
// error. The original error stays in the chain.
func NewReadError(err error, source string) error {
	return Mark(Wrapf(err, "read %s", source), ErrMissingSource)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

/*
Package errors provides semantic error types for the rowkit library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrConfig              = errors.New("invalid schema configuration")
	    ErrMissingValue        = errors.New("missing value")
	    ErrTypeMismatch        = errors.New("type mismatch")
	    ErrInvalidChoice       = errors.New("invalid choice")
	    ErrUnknownField        = errors.New("unknown field")
	    ErrUnsupportedOperator = errors.New("unsupported operator")
	    ErrNotFound            = errors.New("row not found")
	    ErrConflict            = errors.New("version conflict")
	)

ErrConfig and its ConfigError carrier are declaration-time errors: they mean the
schema itself is malformed (bad default, duplicate table name, reserved column
name) and are never produced by runtime data. The remaining errors surface
synchronously from the offending call and are never retried by this library.

Usage:

	row, err := people.Get(ctx, st, 42)
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Handle missing row
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewMissingValueError("name")
	err := errors.NewConflictError("Person", 42)

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors

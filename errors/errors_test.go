/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		field    string
		message  string
		expected string
	}{
		{
			name:     "table and field",
			table:    "Person",
			field:    "age",
			message:  "wrong type for default",
			expected: `table "Person", field "age": wrong type for default`,
		},
		{
			name:     "table only",
			table:    "Person",
			message:  "table name already registered",
			expected: `table "Person": table name already registered`,
		},
		{
			name:     "field only",
			field:    "age",
			message:  "wrong type for choice",
			expected: `field "age": wrong type for choice`,
		},
		{
			name:     "bare message",
			message:  "empty schema",
			expected: "empty schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigError(tt.table, tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !errors.Is(err, ErrConfig) {
				t.Error("ConfigError should match ErrConfig")
			}

			if !IsConfig(err) {
				t.Error("IsConfig should return true for ConfigError")
			}
		})
	}
}

func TestMissingValueError(t *testing.T) {
	err := NewMissingValueError("name")

	expected := `cannot leave field "name" blank`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrMissingValue) {
		t.Error("MissingValueError should match ErrMissingValue")
	}

	if !IsMissingValue(err) {
		t.Error("IsMissingValue should return true for MissingValueError")
	}
}

func TestTypeMismatchError(t *testing.T) {
	err := NewTypeMismatchError("age", "int64", "string")

	expected := `setting "age": expected int64, got string`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("TypeMismatchError should match ErrTypeMismatch")
	}

	if !IsTypeMismatch(err) {
		t.Error("IsTypeMismatch should return true for TypeMismatchError")
	}
}

func TestInvalidChoiceError(t *testing.T) {
	err := NewInvalidChoiceError("status", "archived")

	expected := `invalid value archived for field "status"`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsInvalidChoice(err) {
		t.Error("IsInvalidChoice should return true for InvalidChoiceError")
	}
}

func TestQueryErrors(t *testing.T) {
	unknown := NewUnknownFieldError("Person", "height")
	if unknown.Error() != `table "Person" has no field "height"` {
		t.Errorf("Unexpected message: %q", unknown.Error())
	}
	if !errors.Is(unknown, ErrUnknownField) {
		t.Error("UnknownFieldError should match ErrUnknownField")
	}

	unsupported := NewUnsupportedOperatorError("like")
	if unsupported.Error() != `the operator "like" is not supported` {
		t.Errorf("Unexpected message: %q", unsupported.Error())
	}
	if !errors.Is(unsupported, ErrUnsupportedOperator) {
		t.Error("UnsupportedOperatorError should match ErrUnsupportedOperator")
	}
}

func TestStoreErrors(t *testing.T) {
	notFound := NewNotFoundError("Person", 42)
	if notFound.Error() != `table "Person" has no row with pk 42` {
		t.Errorf("Unexpected message: %q", notFound.Error())
	}
	if !IsNotFound(notFound) {
		t.Error("IsNotFound should return true for NotFoundError")
	}

	conflict := NewConflictError("Person", 42)
	if conflict.Error() != `stale version for table "Person", pk 42` {
		t.Errorf("Unexpected message: %q", conflict.Error())
	}
	if !IsConflict(conflict) {
		t.Error("IsConflict should return true for ConflictError")
	}
}

func TestRangeError(t *testing.T) {
	err := NewRangeError("location", 91.0, "latitude value not bounded between -90.0 and 90.0")

	if !errors.Is(err, ErrOutOfRange) {
		t.Error("RangeError should match ErrOutOfRange")
	}
}

func TestCycleError(t *testing.T) {
	err := NewCycleError("Node")

	if !errors.Is(err, ErrCycle) {
		t.Error("CycleError should match ErrCycle")
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := NewConflictError("Person", 7)
	wrapped := fmt.Errorf("save failed: %w", inner)

	if !errors.Is(wrapped, ErrConflict) {
		t.Error("Wrapped ConflictError should still match ErrConflict")
	}

	var conflict *ConflictError
	if !errors.As(wrapped, &conflict) {
		t.Fatal("errors.As should find the ConflictError")
	}
	if conflict.PK != 7 {
		t.Errorf("Expected pk 7, got %d", conflict.PK)
	}
}

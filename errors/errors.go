/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrConfig is returned for malformed field or table declarations
	ErrConfig = errors.New("invalid schema configuration")

	// ErrMissingValue is returned when a non-blank field is assigned nil
	ErrMissingValue = errors.New("missing value")

	// ErrTypeMismatch is returned when a field is assigned a value of the wrong type
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidChoice is returned when a value is not in a field's choice set
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrUnknownField is returned when a query names an undeclared column
	ErrUnknownField = errors.New("unknown field")

	// ErrUnsupportedOperator is returned when a query uses an unsupported operator
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrOutOfRange is returned when a coordinate component is out of bounds
	ErrOutOfRange = errors.New("value out of range")

	// ErrCycle is returned when a cascading save encounters a reference cycle
	ErrCycle = errors.New("reference cycle")

	// ErrNotFound is returned when a row is not found in the store
	ErrNotFound = errors.New("row not found")

	// ErrConflict is returned when an atomic update presents a stale version
	ErrConflict = errors.New("version conflict")
)

// ConfigError represents a declaration-time schema error. It indicates a
// programming error in the schema, not a runtime data error.
type ConfigError struct {
	Table   string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Table != "" && e.Field != "":
		return fmt.Sprintf("table %q, field %q: %s", e.Table, e.Field, e.Message)
	case e.Table != "":
		return fmt.Sprintf("table %q: %s", e.Table, e.Message)
	case e.Field != "":
		return fmt.Sprintf("field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// MissingValueError represents an attempt to leave a required field blank
type MissingValueError struct {
	Field string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("cannot leave field %q blank", e.Field)
}

func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingValue
}

// TypeMismatchError represents a value of the wrong type assigned to a field
type TypeMismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("setting %q: expected %s, got %s", e.Field, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// InvalidChoiceError represents a value outside a field's declared choice set
type InvalidChoiceError struct {
	Field string
	Value any
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid value %v for field %q", e.Value, e.Field)
}

func (e *InvalidChoiceError) Is(target error) bool {
	return target == ErrInvalidChoice
}

// UnknownFieldError represents a query against an undeclared column
type UnknownFieldError struct {
	Table string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("table %q has no field %q", e.Table, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// UnsupportedOperatorError represents a query operator this layer cannot translate
type UnsupportedOperatorError struct {
	Op string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("the operator %q is not supported", e.Op)
}

func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}

// RangeError represents a coordinate component outside its legal bounds
type RangeError struct {
	Field   string
	Value   float64
	Message string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("field %q: %s (got %v)", e.Field, e.Message, e.Value)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// CycleError represents a cascading save that revisited an unsaved row
type CycleError struct {
	Table string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reference cycle through unsaved row of table %q", e.Table)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// NotFoundError represents a pk the store has no row for
type NotFoundError struct {
	Table string
	PK    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q has no row with pk %d", e.Table, e.PK)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError represents an atomic update rejected for a stale version
type ConflictError struct {
	Table string
	PK    int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("stale version for table %q, pk %d", e.Table, e.PK)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Helper functions for creating errors

// NewConfigError creates a new ConfigError
func NewConfigError(table, field, message string) error {
	return &ConfigError{Table: table, Field: field, Message: message}
}

// NewMissingValueError creates a new MissingValueError
func NewMissingValueError(field string) error {
	return &MissingValueError{Field: field}
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(field, want, got string) error {
	return &TypeMismatchError{Field: field, Want: want, Got: got}
}

// NewInvalidChoiceError creates a new InvalidChoiceError
func NewInvalidChoiceError(field string, value any) error {
	return &InvalidChoiceError{Field: field, Value: value}
}

// NewUnknownFieldError creates a new UnknownFieldError
func NewUnknownFieldError(table, field string) error {
	return &UnknownFieldError{Table: table, Field: field}
}

// NewUnsupportedOperatorError creates a new UnsupportedOperatorError
func NewUnsupportedOperatorError(op string) error {
	return &UnsupportedOperatorError{Op: op}
}

// NewRangeError creates a new RangeError
func NewRangeError(field string, value float64, message string) error {
	return &RangeError{Field: field, Value: value, Message: message}
}

// NewCycleError creates a new CycleError
func NewCycleError(table string) error {
	return &CycleError{Table: table}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(table string, pk int64) error {
	return &NotFoundError{Table: table, PK: pk}
}

// NewConflictError creates a new ConflictError
func NewConflictError(table string, pk int64) error {
	return &ConflictError{Table: table, PK: pk}
}

// IsConfig checks if an error is a declaration-time configuration error
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsMissingValue checks if an error is a missing value error
func IsMissingValue(err error) bool {
	return errors.Is(err, ErrMissingValue)
}

// IsTypeMismatch checks if an error is a type mismatch error
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsInvalidChoice checks if an error is an invalid choice error
func IsInvalidChoice(err error) bool {
	return errors.Is(err, ErrInvalidChoice)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a version conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

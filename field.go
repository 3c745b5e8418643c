/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"fmt"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

type fieldKind int

const (
	kindInt fieldKind = iota
	kindFloat
	kindString
	kindDateTime
	kindCoordinate
	kindForeign
)

// Field is one declared column (or column group) of a table. Declarations are
// inert until Registry.Register resolves them into immutable specs; every
// configuration problem surfaces there as a ConfigError.
type Field struct {
	Name string

	kind    fieldKind
	ref     *Table
	selfRef bool
	blank   bool
	def     any
	defSet  bool
	choices []any
	chSet   bool
}

// Option configures a field declaration.
type Option func(*Field)

// Blank marks the field as assignable from nil, in which case it takes its
// default value.
func Blank() Option {
	return func(f *Field) { f.blank = true }
}

// Default sets the field's default value and implies Blank. The value must
// have the field's base type, or be a func() any whose result does.
func Default(v any) Option {
	return func(f *Field) {
		f.def = v
		f.defSet = true
	}
}

// Choices restricts the field to the given set of legal values. The resolved
// default must be a member when the field allows blank assignment.
func Choices(vs ...any) Option {
	return func(f *Field) {
		f.choices = vs
		f.chSet = true
	}
}

// Int declares an integer column.
func Int(name string, opts ...Option) Field {
	return declare(name, kindInt, nil, opts)
}

// Float declares a float column. Assigning an integer coerces it to float.
func Float(name string, opts ...Option) Field {
	return declare(name, kindFloat, nil, opts)
}

// String declares a string column.
func String(name string, opts ...Option) Field {
	return declare(name, kindString, nil, opts)
}

// DateTime declares a timestamp stored as seven integer columns
// (year, month, day, hour, minute, second, microsecond).
func DateTime(name string, opts ...Option) Field {
	return declare(name, kindDateTime, nil, opts)
}

// Coordinate declares a (latitude, longitude) pair stored as two float columns.
func Coordinate(name string, opts ...Option) Field {
	return declare(name, kindCoordinate, nil, opts)
}

// Foreign declares a reference to a row of a previously registered table,
// stored as one integer pk column (0 is the blank sentinel).
func Foreign(name string, ref *Table, opts ...Option) Field {
	return declare(name, kindForeign, ref, opts)
}

// ForeignSelf declares a reference to a row of the table being registered,
// for recursive structures such as linked lists and trees. It exists because
// Foreign needs an already registered table, which the declaring table cannot
// be.
func ForeignSelf(name string, opts ...Option) Field {
	f := declare(name, kindForeign, nil, opts)
	f.selfRef = true
	return f
}

func declare(name string, kind fieldKind, ref *Table, opts []Option) Field {
	f := Field{Name: name, kind: kind, ref: ref}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// fieldSpec is the per-column contract every variant satisfies: validate and
// normalize assignments, expose the flat slot layout, and translate between
// the stored value and its contiguous run of primitive slots.
type fieldSpec interface {
	// blankAllowed reports whether bind(nil) resolves to the default.
	blankAllowed() bool
	// defaultValue returns the resolved declaration-time default.
	defaultValue() any
	// bind validates v and returns the value to store on the instance.
	bind(name string, v any) (any, error)
	// slots returns the ordered flat columns this field occupies.
	slots(name string) []store.Column
	// decompose flattens a stored value into one primitive per slot.
	decompose(stored any) ([]any, error)
	// compose consumes exactly len(slots()) values from the cursor and
	// returns a bind-assignable value.
	compose(cur *store.Cursor) (any, error)
	// logical maps a stored value to the value read back by callers.
	logical(stored any) any
}

// scalarSpec covers the single-slot int/float/string variants.
type scalarSpec struct {
	typ     string // store.TypeInteger, TypeFloat, or TypeString
	blank   bool
	def     any
	choices []any
}

func (s *scalarSpec) blankAllowed() bool { return s.blank }
func (s *scalarSpec) defaultValue() any  { return s.def }

func (s *scalarSpec) bind(name string, v any) (any, error) {
	if v == nil {
		if !s.blank {
			return nil, errors.NewMissingValueError(name)
		}
		v = s.def
	}
	coerced, ok := coerceScalar(s.typ, v)
	if !ok {
		return nil, errors.NewTypeMismatchError(name, s.typ, fmt.Sprintf("%T", v))
	}
	if s.choices != nil && !containsScalar(s.choices, coerced) {
		return nil, errors.NewInvalidChoiceError(name, coerced)
	}
	return coerced, nil
}

func (s *scalarSpec) slots(name string) []store.Column {
	return []store.Column{{Name: name, Type: s.typ}}
}

func (s *scalarSpec) decompose(stored any) ([]any, error) {
	return []any{stored}, nil
}

func (s *scalarSpec) compose(cur *store.Cursor) (any, error) {
	switch s.typ {
	case store.TypeInteger:
		return cur.NextInt()
	case store.TypeFloat:
		return cur.NextFloat()
	default:
		return cur.NextString()
	}
}

func (s *scalarSpec) logical(stored any) any { return stored }

// coerceScalar normalizes v to the flat representation of the given primitive
// type. Integers widen to int64; floats additionally accept integer input.
func coerceScalar(typ string, v any) (any, bool) {
	switch typ {
	case store.TypeInteger:
		if n, ok := toInt64(v); ok {
			return n, true
		}
		return nil, false
	case store.TypeFloat:
		switch f := v.(type) {
		case float64:
			return f, true
		case float32:
			return float64(f), true
		}
		if n, ok := toInt64(v); ok {
			return float64(n), true
		}
		return nil, false
	case store.TypeString:
		s, ok := v.(string)
		return s, ok
	}
	return nil, false
}

// strictScalar accepts only values of the exact base type. Integer widths
// widen to int64; everything else must already match.
func strictScalar(typ string, v any) (any, bool) {
	switch typ {
	case store.TypeInteger:
		if n, ok := toInt64(v); ok {
			return n, true
		}
		return nil, false
	case store.TypeFloat:
		switch f := v.(type) {
		case float64:
			return f, true
		case float32:
			return float64(f), true
		}
		return nil, false
	case store.TypeString:
		s, ok := v.(string)
		return s, ok
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	}
	return 0, false
}

func containsScalar(choices []any, v any) bool {
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}

// build resolves a declaration into its immutable spec. All ConfigError cases
// of the declaration contract live here.
func (f Field) build(table string) (fieldSpec, error) {
	if f.kind == kindForeign {
		return f.buildForeign(table)
	}

	blank := f.blank || f.defSet
	var spec fieldSpec
	switch f.kind {
	case kindInt:
		def, choices, err := f.resolveScalar(table, store.TypeInteger, int64(0))
		if err != nil {
			return nil, err
		}
		spec = &scalarSpec{typ: store.TypeInteger, blank: blank, def: def, choices: choices}
	case kindFloat:
		def, choices, err := f.resolveScalar(table, store.TypeFloat, float64(0))
		if err != nil {
			return nil, err
		}
		spec = &scalarSpec{typ: store.TypeFloat, blank: blank, def: def, choices: choices}
	case kindString:
		def, choices, err := f.resolveScalar(table, store.TypeString, "")
		if err != nil {
			return nil, err
		}
		spec = &scalarSpec{typ: store.TypeString, blank: blank, def: def, choices: choices}
	case kindDateTime:
		return f.buildDateTime(table)
	case kindCoordinate:
		return f.buildCoordinate(table)
	default:
		return nil, errors.NewConfigError(table, f.Name, "unknown field kind")
	}
	return spec, nil
}

// resolveScalar resolves the default and choice set for a scalar declaration.
// Defaults and choices are strict about the base type: the int-to-float
// coercion applies to assignment only, never to declarations.
func (f Field) resolveScalar(table, typ string, zero any) (any, []any, error) {
	def := zero
	if f.defSet {
		raw := f.def
		if fn, ok := raw.(func() any); ok {
			raw = fn()
			if _, ok := strictScalar(typ, raw); !ok {
				return nil, nil, errors.NewConfigError(table, f.Name, "wrong type returned by default callable")
			}
		}
		resolved, ok := strictScalar(typ, raw)
		if !ok {
			return nil, nil, errors.NewConfigError(table, f.Name, "wrong type for default")
		}
		def = resolved
	}

	var choices []any
	if f.chSet {
		choices = make([]any, 0, len(f.choices))
		for _, c := range f.choices {
			resolved, ok := strictScalar(typ, c)
			if !ok {
				return nil, nil, errors.NewConfigError(table, f.Name,
					fmt.Sprintf("wrong type for choice %v in choices", c))
			}
			choices = append(choices, resolved)
		}
	}

	if (f.blank || f.defSet) && choices != nil && !containsScalar(choices, def) {
		return nil, nil, errors.NewConfigError(table, f.Name, "invalid default value - not a valid choice")
	}
	return def, choices, nil
}

/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"fmt"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

type refKind int

const (
	refUnset refKind = iota
	refByKey
	refByValue
)

// Ref is the value of a Foreign field: either unset, a lazy pk that has not
// been dereferenced yet, or an eagerly held row (which may itself be unsaved).
// The zero Ref is unset.
type Ref struct {
	kind refKind
	pk   int64
	row  *Row
}

// KeyRef returns a lazy reference to the row with the given pk.
func KeyRef(pk int64) Ref {
	return Ref{kind: refByKey, pk: pk}
}

// RowRef returns an eager reference holding the row itself.
func RowRef(row *Row) Ref {
	return Ref{kind: refByValue, row: row}
}

// Unset reports whether the reference points at nothing.
func (r Ref) Unset() bool { return r.kind == refUnset }

// Lazy reports whether the reference holds only a pk.
func (r Ref) Lazy() bool { return r.kind == refByKey }

// PK returns the referenced pk: the held pk for a lazy reference, the row's
// current pk for an eager one (0 while that row is unsaved), and 0 when unset.
func (r Ref) PK() int64 {
	switch r.kind {
	case refByKey:
		return r.pk
	case refByValue:
		return r.row.PK()
	}
	return 0
}

// Row returns the eagerly held row, or nil.
func (r Ref) Row() *Row {
	if r.kind == refByValue {
		return r.row
	}
	return nil
}

type foreignSpec struct {
	ref   *Table
	blank bool
}

func (f Field) buildForeign(table string) (fieldSpec, error) {
	if f.ref == nil && !f.selfRef {
		return nil, errors.NewConfigError(table, f.Name, "foreign field requires a registered referenced table")
	}
	if f.defSet || f.chSet {
		return nil, errors.NewConfigError(table, f.Name, "foreign fields take no default or choices")
	}
	return &foreignSpec{ref: f.ref, blank: f.blank}, nil
}

func (s *foreignSpec) blankAllowed() bool { return s.blank }
func (s *foreignSpec) defaultValue() any  { return Ref{} }

func (s *foreignSpec) bind(name string, v any) (any, error) {
	if v == nil {
		if !s.blank {
			return nil, errors.NewMissingValueError(name)
		}
		return Ref{}, nil
	}
	switch ref := v.(type) {
	case Ref:
		if ref.Unset() && !s.blank {
			return nil, errors.NewMissingValueError(name)
		}
		if row := ref.Row(); row != nil && row.table != s.ref {
			return nil, errors.NewTypeMismatchError(name,
				"*Row of table "+s.ref.name, "*Row of table "+row.table.name)
		}
		return ref, nil
	case *Row:
		if ref.table != s.ref {
			return nil, errors.NewTypeMismatchError(name,
				"*Row of table "+s.ref.name, "*Row of table "+ref.table.name)
		}
		return RowRef(ref), nil
	}
	if pk, ok := toInt64(v); ok {
		return KeyRef(pk), nil
	}
	return nil, errors.NewTypeMismatchError(name,
		"int64 (pk) or *Row of table "+s.ref.name, fmt.Sprintf("%T", v))
}

// slots names the single pk column after the field itself; its type is the
// referenced table's name, the forward type reference of the schema export.
func (s *foreignSpec) slots(name string) []store.Column {
	return []store.Column{{Name: name, Type: s.ref.name}}
}

// decompose writes the referenced pk, with 0 as the blank sentinel.
func (s *foreignSpec) decompose(stored any) ([]any, error) {
	ref, ok := stored.(Ref)
	if !ok {
		return nil, fmt.Errorf("foreign field holds %T", stored)
	}
	return []any{ref.PK()}, nil
}

func (s *foreignSpec) compose(cur *store.Cursor) (any, error) {
	pk, err := cur.NextInt()
	if err != nil {
		return nil, err
	}
	if pk == 0 {
		return Ref{}, nil
	}
	return KeyRef(pk), nil
}

func (s *foreignSpec) logical(stored any) any { return stored }

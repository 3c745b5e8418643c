/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"context"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// Row is one instance of a registered table. A row is Transient (pk and
// version both zero) until its first successful Save, Persisted afterwards,
// and Transient again after Delete. Rows are single-owner: they carry no
// locking and must not be mutated concurrently.
type Row struct {
	table  *Table
	st     store.Store
	pk     int64
	versn  int64
	values map[string]any
}

// New creates a Transient row bound to the given store. Every declared field
// is bound from values; absent entries bind nil, which takes the field's
// default or fails with MissingValueError.
func (t *Table) New(st store.Store, values map[string]any) (*Row, error) {
	for name := range values {
		if _, ok := t.fields[name]; !ok {
			return nil, errors.NewUnknownFieldError(t.name, name)
		}
	}
	r := &Row{table: t, st: st, values: make(map[string]any, len(t.fieldNames))}
	for _, name := range t.fieldNames {
		if err := r.Set(name, values[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Table returns the row's declared type.
func (r *Row) Table() *Table { return r.table }

// PK returns the store-assigned identity, or 0 while the row is Transient.
func (r *Row) PK() int64 { return r.pk }

// Version returns the optimistic-concurrency token, or 0 while Transient.
func (r *Row) Version() int64 { return r.versn }

// Saved reports whether the row is currently Persisted.
func (r *Row) Saved() bool { return r.pk != 0 }

// Set binds a value to the named field. Nil takes the default when the field
// allows blank assignment and fails with MissingValueError otherwise.
func (r *Row) Set(name string, v any) error {
	spec, ok := r.table.fields[name]
	if !ok {
		return errors.NewUnknownFieldError(r.table.name, name)
	}
	stored, err := spec.bind(name, v)
	if err != nil {
		return err
	}
	r.values[name] = stored
	return nil
}

// Get returns the field's current logical value. Foreign fields return their
// Ref; use Deref to resolve it against the store.
func (r *Row) Get(name string) (any, error) {
	spec, ok := r.table.fields[name]
	if !ok {
		return nil, errors.NewUnknownFieldError(r.table.name, name)
	}
	return spec.logical(r.values[name]), nil
}

// Deref resolves the named Foreign field. An eagerly held row is returned
// directly; a lazy reference costs one store round trip; an unset reference
// returns nil.
func (r *Row) Deref(ctx context.Context, name string) (*Row, error) {
	spec, ok := r.table.fields[name]
	if !ok {
		return nil, errors.NewUnknownFieldError(r.table.name, name)
	}
	fs, ok := spec.(*foreignSpec)
	if !ok {
		return nil, errors.NewTypeMismatchError(name, "foreign field", "non-foreign field")
	}
	ref := r.values[name].(Ref)
	switch {
	case ref.Unset():
		return nil, nil
	case ref.Row() != nil:
		return ref.Row(), nil
	}
	return fs.ref.Get(ctx, r.st, ref.PK())
}

// decomposeAll flattens every field in declaration order into one value list
// matching the registered column schema.
func (r *Row) decomposeAll() ([]any, error) {
	values := make([]any, 0, len(r.table.schema.Columns))
	for _, name := range r.table.fieldNames {
		part, err := r.table.fields[name].decompose(r.values[name])
		if err != nil {
			return nil, err
		}
		values = append(values, part...)
	}
	return values, nil
}

// Save writes the row to the store. Eagerly held, unsaved foreign rows are
// saved first, depth first, so the parent never writes an unset pk sentinel.
// A Transient row inserts and adopts the assigned pk and version. A Persisted
// row updates: with atomic true the store checks the presented version and
// fails with ErrConflict when stale; with atomic false the write is
// last-write-wins.
func (r *Row) Save(ctx context.Context, atomic bool) error {
	return r.save(ctx, atomic, map[*Row]bool{})
}

func (r *Row) save(ctx context.Context, atomic bool, seen map[*Row]bool) error {
	if seen[r] {
		return errors.NewCycleError(r.table.name)
	}
	seen[r] = true
	defer delete(seen, r)

	for _, name := range r.table.fieldNames {
		if _, ok := r.table.fields[name].(*foreignSpec); !ok {
			continue
		}
		ref := r.values[name].(Ref)
		if nested := ref.Row(); nested != nil && !nested.Saved() {
			if err := nested.save(ctx, atomic, seen); err != nil {
				return err
			}
		}
	}

	values, err := r.decomposeAll()
	if err != nil {
		return err
	}

	switch {
	case !r.Saved():
		pk, version, err := r.st.Insert(ctx, r.table.name, values)
		if err != nil {
			return err
		}
		r.pk, r.versn = pk, version
	case atomic:
		version, err := r.st.Update(ctx, r.table.name, r.pk, values, r.versn)
		if err != nil {
			return err
		}
		r.versn = version
	default:
		version, err := r.st.Update(ctx, r.table.name, r.pk, values, 0)
		if err != nil {
			return err
		}
		r.versn = version
	}
	return nil
}

// Delete drops the row from the store and clears its identity. Field values
// are untouched, so the row can be saved again as a new identity.
func (r *Row) Delete(ctx context.Context) error {
	if err := r.st.Drop(ctx, r.table.name, r.pk); err != nil {
		return err
	}
	r.pk, r.versn = 0, 0
	return nil
}

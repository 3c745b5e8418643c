/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"sync"
	"unicode"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// Reserved identifiers no column may use: they collide with the row identity
// and lifecycle surface.
var reservedNames = map[string]bool{
	"pk":      true,
	"version": true,
	"save":    true,
	"delete":  true,
}

// Table is a declared row type: an ordered field list, the per-field specs,
// and the flat column schema derived from them. Tables are immutable once
// registered; the column order is the binding wire contract with the store.
type Table struct {
	name       string
	fieldNames []string
	fields     map[string]fieldSpec
	schema     store.TableSchema
}

// Name returns the registered table name.
func (t *Table) Name() string { return t.name }

// FieldNames returns the declared field names in declaration order.
func (t *Table) FieldNames() []string {
	out := make([]string, len(t.fieldNames))
	copy(out, t.fieldNames)
	return out
}

// Schema returns the flat column layout: every field's slots concatenated in
// declaration order.
func (t *Table) Schema() store.TableSchema {
	cols := make([]store.Column, len(t.schema.Columns))
	copy(cols, t.schema.Columns)
	return store.TableSchema{Name: t.schema.Name, Columns: cols}
}

// Registry validates and keeps table declarations. It is an explicit value
// with no process-wide state; a table name registers once per Registry and is
// never reused.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Register declares a table from its ordered fields. It fails with a
// ConfigError on a duplicate table name, an invalid or reserved column name, a
// duplicate column name, or any malformed field declaration.
func (r *Registry) Register(name string, fields ...Field) (*Table, error) {
	if name == "" {
		return nil, errors.NewConfigError(name, "", "table name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[name]; exists {
		return nil, errors.NewConfigError(name, "", "table name already registered")
	}

	t := &Table{
		name:   name,
		fields: make(map[string]fieldSpec, len(fields)),
	}
	for _, f := range fields {
		if !validFieldName(f.Name) {
			return nil, errors.NewConfigError(name, f.Name, "invalid column name")
		}
		if _, dup := t.fields[f.Name]; dup {
			return nil, errors.NewConfigError(name, f.Name, "duplicate column name")
		}
		spec, err := f.build(name)
		if err != nil {
			return nil, err
		}
		// A ForeignSelf declaration resolves to the table being built.
		if fs, ok := spec.(*foreignSpec); ok && fs.ref == nil {
			fs.ref = t
		}
		t.fieldNames = append(t.fieldNames, f.Name)
		t.fields[f.Name] = spec
	}

	t.schema = store.TableSchema{Name: name}
	for _, fn := range t.fieldNames {
		t.schema.Columns = append(t.schema.Columns, t.fields[fn].slots(fn)...)
	}

	r.tables[name] = t
	r.order = append(r.order, name)
	return t, nil
}

// MustRegister is Register, panicking on error. Schema declarations are
// program constants, so a failure here is a programming error.
func (r *Registry) MustRegister(name string, fields ...Field) *Table {
	t, err := r.Register(name, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Table returns the registered table with the given name.
func (r *Registry) Table(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns all registered tables in registration order.
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name])
	}
	return out
}

// Schemas returns the flat schema of every registered table, in registration
// order. This is the description stores bootstrap from.
func (r *Registry) Schemas() []store.TableSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]store.TableSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name].Schema())
	}
	return out
}

// validFieldName requires a leading letter, alphanumeric runes throughout, and
// no reserved identifier.
func validFieldName(name string) bool {
	if name == "" || reservedNames[name] {
		return false
	}
	for i, r := range name {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

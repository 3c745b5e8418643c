/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

// Package memstore provides an in-memory implementation of the store contract.
// It is the reference semantics for the other backends and the workhorse of the
// unit tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

type row struct {
	values  []any
	version int64
}

type table struct {
	schema store.TableSchema
	rows   map[int64]*row
	nextPK int64
}

// Store is a mutex-guarded in-memory store.Store. Versions start at 1 and
// increment on every update; pks are assigned from a per-table counter.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table

	insertErr error
	updateErr error
}

// New creates a Store holding the given tables, all empty.
func New(schemas ...store.TableSchema) *Store {
	s := &Store{tables: make(map[string]*table)}
	for _, sc := range schemas {
		s.tables[sc.Name] = &table{schema: sc, rows: make(map[int64]*row)}
	}
	return s
}

// WithInsertError makes Insert return err, for failure-path tests.
func (s *Store) WithInsertError(err error) *Store {
	s.insertErr = err
	return s
}

// WithUpdateError makes Update return err, for failure-path tests.
func (s *Store) WithUpdateError(err error) *Store {
	s.updateErr = err
	return s
}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("memstore: unknown table %q", name)
	}
	return t, nil
}

// Get returns a copy of the row's flat values and its version.
func (s *Store) Get(ctx context.Context, name string, pk int64) ([]any, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return nil, 0, err
	}
	r, ok := t.rows[pk]
	if !ok {
		return nil, 0, errors.NewNotFoundError(name, pk)
	}
	values := make([]any, len(r.values))
	copy(values, r.values)
	return values, r.version, nil
}

// Scan returns matching pks in ascending order.
func (s *Store) Scan(ctx context.Context, name string, op store.Operator, column string, value any) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	if !op.Valid() {
		return nil, errors.NewUnsupportedOperatorError(string(op))
	}

	col := -1
	if op != store.OpAll && column != "id" {
		if col = t.schema.Column(column); col < 0 {
			return nil, errors.NewUnknownFieldError(name, column)
		}
	}

	var pks []int64
	for pk, r := range t.rows {
		switch {
		case op == store.OpAll:
			pks = append(pks, pk)
		case column == "id":
			ok, err := compare(op, pk, value)
			if err != nil {
				return nil, err
			}
			if ok {
				pks = append(pks, pk)
			}
		default:
			ok, err := compare(op, r.values[col], value)
			if err != nil {
				return nil, err
			}
			if ok {
				pks = append(pks, pk)
			}
		}
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i] < pks[j] })
	return pks, nil
}

// Insert stores a new row at the next pk with version 1.
func (s *Store) Insert(ctx context.Context, name string, values []any) (int64, int64, error) {
	if s.insertErr != nil {
		return 0, 0, s.insertErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return 0, 0, err
	}
	if len(values) != len(t.schema.Columns) {
		return 0, 0, fmt.Errorf("memstore: table %q expects %d values, got %d",
			name, len(t.schema.Columns), len(values))
	}

	t.nextPK++
	pk := t.nextPK
	stored := make([]any, len(values))
	copy(stored, values)
	t.rows[pk] = &row{values: stored, version: 1}
	return pk, 1, nil
}

// Update replaces the row's values. With expectedVersion > 0 a stale version
// fails with ErrConflict and the row is left untouched.
func (s *Store) Update(ctx context.Context, name string, pk int64, values []any, expectedVersion int64) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	r, ok := t.rows[pk]
	if !ok {
		return 0, errors.NewNotFoundError(name, pk)
	}
	if expectedVersion > 0 && r.version != expectedVersion {
		return 0, errors.NewConflictError(name, pk)
	}
	if len(values) != len(t.schema.Columns) {
		return 0, fmt.Errorf("memstore: table %q expects %d values, got %d",
			name, len(t.schema.Columns), len(values))
	}

	stored := make([]any, len(values))
	copy(stored, values)
	r.values = stored
	r.version++
	return r.version, nil
}

// Drop removes the row with the given pk.
func (s *Store) Drop(ctx context.Context, name string, pk int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return err
	}
	if _, ok := t.rows[pk]; !ok {
		return errors.NewNotFoundError(name, pk)
	}
	delete(t.rows, pk)
	return nil
}

// compare applies op to a stored value and a probe value of the same flat type.
func compare(op store.Operator, stored, probe any) (bool, error) {
	switch sv := stored.(type) {
	case int64:
		pv, ok := toInt64(probe)
		if !ok {
			return false, fmt.Errorf("memstore: cannot compare %T against integer column", probe)
		}
		return ordered(op, compareInt(sv, pv))
	case float64:
		pv, ok := toFloat64(probe)
		if !ok {
			return false, fmt.Errorf("memstore: cannot compare %T against float column", probe)
		}
		return ordered(op, compareFloat(sv, pv))
	case string:
		pv, ok := probe.(string)
		if !ok {
			return false, fmt.Errorf("memstore: cannot compare %T against string column", probe)
		}
		return ordered(op, compareString(sv, pv))
	}
	return false, fmt.Errorf("memstore: unsupported stored value type %T", stored)
}

func ordered(op store.Operator, cmp int) (bool, error) {
	switch op {
	case store.OpEqual:
		return cmp == 0, nil
	case store.OpNotEqual:
		return cmp != 0, nil
	case store.OpGreaterThan:
		return cmp > 0, nil
	case store.OpLessThan:
		return cmp < 0, nil
	}
	return false, errors.NewUnsupportedOperatorError(string(op))
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
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

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int64:
		return float64(f), true
	case int:
		return float64(f), true
	}
	return 0, false
}

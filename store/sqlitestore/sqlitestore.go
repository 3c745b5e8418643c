/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

// Package sqlitestore implements the store contract over SQLite. Each mapped
// table becomes one physical table with a pk rowid, a version column, and one
// typed column per flat slot.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// Store is a store.Store backed by a SQLite database.
type Store struct {
	db      *sql.DB
	schemas map[string]store.TableSchema
}

// Open opens (creating if needed) the database at path and ensures a physical
// table exists for every schema. Use ":memory:" for an ephemeral database.
func Open(path string, schemas ...store.TableSchema) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, schemas: make(map[string]store.TableSchema, len(schemas))}
	for _, sc := range schemas {
		if _, err := db.Exec(createTableSQL(sc)); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating table %q: %w", sc.Name, err)
		}
		s.schemas[sc.Name] = sc
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTableSQL(sc store.TableSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", quote(sc.Name))
	b.WriteString("  pk INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	b.WriteString("  version INTEGER NOT NULL")
	for _, col := range sc.Columns {
		fmt.Fprintf(&b, ",\n  %s %s NOT NULL", quote(col.Name), sqlType(col))
	}
	b.WriteString("\n)")
	return b.String()
}

// sqlType maps a flat column type to SQLite storage. Foreign columns hold the
// referenced row's pk and are plain integers on the wire.
func sqlType(col store.Column) string {
	switch col.Type {
	case store.TypeFloat:
		return "REAL"
	case store.TypeString:
		return "TEXT"
	default:
		return "INTEGER"
	}
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func (s *Store) schema(table string) (store.TableSchema, error) {
	sc, ok := s.schemas[table]
	if !ok {
		return store.TableSchema{}, fmt.Errorf("sqlitestore: unknown table %q", table)
	}
	return sc, nil
}

// Get returns the row's flat values in schema order, plus its version.
func (s *Store) Get(ctx context.Context, table string, pk int64) ([]any, int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return nil, 0, err
	}

	cols := make([]string, 0, len(sc.Columns)+1)
	cols = append(cols, "version")
	for _, c := range sc.Columns {
		cols = append(cols, quote(c.Name))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE pk = ?",
		strings.Join(cols, ", "), quote(table))

	targets := make([]any, len(sc.Columns)+1)
	var version int64
	targets[0] = &version
	for i, c := range sc.Columns {
		targets[i+1] = scanTarget(c)
	}

	if err := s.db.QueryRowContext(ctx, query, pk).Scan(targets...); err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, errors.NewNotFoundError(table, pk)
		}
		return nil, 0, fmt.Errorf("sqlitestore: get %s/%d: %w", table, pk, err)
	}

	values := make([]any, len(sc.Columns))
	for i, c := range sc.Columns {
		values[i] = scannedValue(c, targets[i+1])
	}
	return values, version, nil
}

// scanTarget returns a typed destination for one column.
func scanTarget(c store.Column) any {
	switch c.Type {
	case store.TypeFloat:
		return new(float64)
	case store.TypeString:
		return new(string)
	default:
		return new(int64)
	}
}

func scannedValue(c store.Column, target any) any {
	switch t := target.(type) {
	case *float64:
		return *t
	case *string:
		return *t
	case *int64:
		return *t
	}
	return nil
}

// Scan returns matching pks in ascending pk order.
func (s *Store) Scan(ctx context.Context, table string, op store.Operator, column string, value any) ([]int64, error) {
	if _, err := s.schema(table); err != nil {
		return nil, err
	}

	var query string
	var args []any
	switch {
	case op == store.OpAll:
		query = fmt.Sprintf("SELECT pk FROM %s ORDER BY pk", quote(table))
	default:
		cmp, err := sqlOperator(op)
		if err != nil {
			return nil, err
		}
		target := column
		if column == "id" {
			target = "pk"
		} else if sc, _ := s.schema(table); sc.Column(column) < 0 {
			return nil, errors.NewUnknownFieldError(table, column)
		}
		query = fmt.Sprintf("SELECT pk FROM %s WHERE %s %s ? ORDER BY pk",
			quote(table), quote(target), cmp)
		args = append(args, value)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: scan %s: %w", table, err)
	}
	defer rows.Close()

	var pks []int64
	for rows.Next() {
		var pk int64
		if err := rows.Scan(&pk); err != nil {
			return nil, err
		}
		pks = append(pks, pk)
	}
	return pks, rows.Err()
}

func sqlOperator(op store.Operator) (string, error) {
	switch op {
	case store.OpEqual:
		return "=", nil
	case store.OpNotEqual:
		return "!=", nil
	case store.OpGreaterThan:
		return ">", nil
	case store.OpLessThan:
		return "<", nil
	}
	return "", errors.NewUnsupportedOperatorError(string(op))
}

// Insert stores a new row with version 1 and returns the assigned pk.
func (s *Store) Insert(ctx context.Context, table string, values []any) (int64, int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return 0, 0, err
	}
	if len(values) != len(sc.Columns) {
		return 0, 0, fmt.Errorf("sqlitestore: table %q expects %d values, got %d",
			table, len(sc.Columns), len(values))
	}

	cols := make([]string, 0, len(sc.Columns)+1)
	marks := make([]string, 0, len(sc.Columns)+1)
	args := make([]any, 0, len(sc.Columns)+1)
	cols = append(cols, "version")
	marks = append(marks, "?")
	args = append(args, int64(1))
	for i, c := range sc.Columns {
		cols = append(cols, quote(c.Name))
		marks = append(marks, "?")
		args = append(args, values[i])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("sqlitestore: insert into %s: %w", table, err)
	}
	pk, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	return pk, 1, nil
}

// Update replaces the row's values, bumping the version. A conditional update
// whose expected version no longer matches fails with ErrConflict; a missing
// pk fails with ErrNotFound.
func (s *Store) Update(ctx context.Context, table string, pk int64, values []any, expectedVersion int64) (int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return 0, err
	}
	if len(values) != len(sc.Columns) {
		return 0, fmt.Errorf("sqlitestore: table %q expects %d values, got %d",
			table, len(sc.Columns), len(values))
	}

	sets := make([]string, 0, len(sc.Columns)+1)
	args := make([]any, 0, len(sc.Columns)+2)
	sets = append(sets, "version = version + 1")
	for i, c := range sc.Columns {
		sets = append(sets, fmt.Sprintf("%s = ?", quote(c.Name)))
		args = append(args, values[i])
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE pk = ?", quote(table), strings.Join(sets, ", "))
	args = append(args, pk)
	if expectedVersion > 0 {
		query += " AND version = ?"
		args = append(args, expectedVersion)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: update %s/%d: %w", table, pk, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		// Distinguish a missing row from a stale version.
		var exists int
		err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE pk = ?", quote(table)), pk).Scan(&exists)
		if err != nil {
			return 0, err
		}
		if exists == 0 {
			return 0, errors.NewNotFoundError(table, pk)
		}
		return 0, errors.NewConflictError(table, pk)
	}

	var version int64
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT version FROM %s WHERE pk = ?", quote(table)), pk).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Drop removes the row with the given pk.
func (s *Store) Drop(ctx context.Context, table string, pk int64) error {
	if _, err := s.schema(table); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE pk = ?", quote(table)), pk)
	if err != nil {
		return fmt.Errorf("sqlitestore: drop %s/%d: %w", table, pk, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NewNotFoundError(table, pk)
	}
	return nil
}

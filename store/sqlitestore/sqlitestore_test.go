/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkit/rowkit"
	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
	"github.com/rowkit/rowkit/store/sqlitestore"
)

var personSchema = store.TableSchema{
	Name: "Person",
	Columns: []store.Column{
		{Name: "name", Type: store.TypeString},
		{Name: "age", Type: store.TypeInteger},
		{Name: "score", Type: store.TypeFloat},
	},
}

func open(t *testing.T, schemas ...store.TableSchema) *sqlitestore.Store {
	t.Helper()
	st, err := sqlitestore.Open(filepath.Join(t.TempDir(), "rowkit.db"), schemas...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	st := open(t, personSchema)

	pk, version, err := st.Insert(ctx, "Person", []any{"Ann", int64(30), 1.5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pk)
	assert.Equal(t, int64(1), version)

	values, version, err := st.Get(ctx, "Person", pk)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ann", int64(30), 1.5}, values)
	assert.Equal(t, int64(1), version)

	version, err = st.Update(ctx, "Person", pk, []any{"Ann", int64(31), 1.5}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	require.NoError(t, st.Drop(ctx, "Person", pk))
	_, _, err = st.Get(ctx, "Person", pk)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, st.Drop(ctx, "Person", pk), errors.ErrNotFound)
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	st := open(t, personSchema)
	for _, v := range [][]any{
		{"Ann", int64(30), 1.5},
		{"Bob", int64(25), 2.5},
		{"Cid", int64(30), 3.5},
	} {
		_, _, err := st.Insert(ctx, "Person", v)
		require.NoError(t, err)
	}

	pks, err := st.Scan(ctx, "Person", store.OpAll, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, pks)

	pks, err = st.Scan(ctx, "Person", store.OpEqual, "age", int64(30))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, pks)

	pks, err = st.Scan(ctx, "Person", store.OpNotEqual, "name", "Bob")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, pks)

	pks, err = st.Scan(ctx, "Person", store.OpGreaterThan, "score", 2.0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, pks)

	pks, err = st.Scan(ctx, "Person", store.OpLessThan, "id", int64(3))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, pks)

	_, err = st.Scan(ctx, "Person", store.OpEqual, "ghost", int64(1))
	assert.ErrorIs(t, err, errors.ErrUnknownField)

	_, err = st.Scan(ctx, "Person", "ge", "age", int64(30))
	assert.ErrorIs(t, err, errors.ErrUnsupportedOperator)
}

func TestConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	st := open(t, personSchema)

	pk, _, err := st.Insert(ctx, "Person", []any{"Ann", int64(30), 1.5})
	require.NoError(t, err)

	version, err := st.Update(ctx, "Person", pk, []any{"Ann", int64(31), 1.5}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	_, err = st.Update(ctx, "Person", pk, []any{"Ann", int64(32), 1.5}, 1)
	assert.ErrorIs(t, err, errors.ErrConflict)

	_, err = st.Update(ctx, "Person", 42, []any{"Ann", int64(32), 1.5}, 1)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rowkit.db")

	st, err := sqlitestore.Open(path, personSchema)
	require.NoError(t, err)
	pk, _, err := st.Insert(ctx, "Person", []any{"Ann", int64(30), 1.5})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = sqlitestore.Open(path, personSchema)
	require.NoError(t, err)
	defer st.Close()

	values, _, err := st.Get(ctx, "Person", pk)
	require.NoError(t, err)
	assert.Equal(t, "Ann", values[0])
}

// TestRowMapping drives the full mapping layer over a SQLite database.
func TestRowMapping(t *testing.T) {
	ctx := context.Background()
	reg := rowkit.NewRegistry()
	dept := reg.MustRegister("Department", rowkit.String("title"))
	person := reg.MustRegister("Person",
		rowkit.String("name"),
		rowkit.Int("age", rowkit.Default(0)),
		rowkit.Foreign("dept", dept, rowkit.Blank()),
	)
	st := open(t, reg.Schemas()...)

	eng, err := dept.New(st, map[string]any{"title": "Engineering"})
	require.NoError(t, err)
	ann, err := person.New(st, map[string]any{"name": "Ann", "age": 30, "dept": eng})
	require.NoError(t, err)
	require.NoError(t, ann.Save(ctx, true))
	assert.True(t, eng.Saved())

	bob, err := person.New(st, map[string]any{"name": "Bob", "age": 25})
	require.NoError(t, err)
	require.NoError(t, bob.Save(ctx, true))

	rows, err := person.Filter(ctx, st, rowkit.Eq("dept", eng))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, err := rows[0].Get("name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	loaded, err := person.Get(ctx, st, ann.PK())
	require.NoError(t, err)
	got, err := loaded.Deref(ctx, "dept")
	require.NoError(t, err)
	require.NotNil(t, got)
	title, err := got.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", title)

	// Stale version loses the race.
	other, err := person.Get(ctx, st, ann.PK())
	require.NoError(t, err)
	require.NoError(t, other.Save(ctx, true))
	require.NoError(t, ann.Set("age", 31))
	assert.ErrorIs(t, ann.Save(ctx, true), errors.ErrConflict)
}

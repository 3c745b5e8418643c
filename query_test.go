/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store/memstore"
)

// queryFixture seeds Ann(30), Bob(25), Cid(30) and returns their table.
func queryFixture(t *testing.T) (*Table, *memstore.Store) {
	t.Helper()
	reg := NewRegistry()
	person := reg.MustRegister("Person",
		String("name"),
		Int("age"),
	)
	st := memstore.New(reg.Schemas()...)

	ctx := context.Background()
	for _, p := range []struct {
		name string
		age  int
	}{{"Ann", 30}, {"Bob", 25}, {"Cid", 30}} {
		row, err := person.New(st, map[string]any{"name": p.name, "age": p.age})
		require.NoError(t, err)
		require.NoError(t, row.Save(ctx, true))
	}
	return person, st
}

func names(t *testing.T, rows []*Row) []string {
	t.Helper()
	out := make([]string, len(rows))
	for i, r := range rows {
		v, err := r.Get("name")
		require.NoError(t, err)
		out[i] = v.(string)
	}
	return out
}

func TestFilterScalars(t *testing.T) {
	ctx := context.Background()
	person, st := queryFixture(t)

	t.Run("MatchAll", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, All())
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Bob", "Cid"}, names(t, rows))

		// The zero Query is the same thing.
		rows, err = person.Filter(ctx, st, Query{})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("Eq", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Eq("age", 30))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(t, rows))
	})

	t.Run("Ne", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Ne("name", "Ann"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob", "Cid"}, names(t, rows))
	})

	t.Run("GtLt", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Gt("age", 25))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(t, rows))

		rows, err = person.Filter(ctx, st, Lt("age", 30))
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob"}, names(t, rows))
	})

	t.Run("NoMatches", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Eq("age", 99))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestFilterKeywordForm(t *testing.T) {
	ctx := context.Background()
	person, st := queryFixture(t)

	t.Run("BareColumnMeansEq", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Where("age", 30))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(t, rows))
	})

	t.Run("SuffixSelectsOperator", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Where("age__gt", 25))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(t, rows))

		rows, err = person.Filter(ctx, st, Where("name__ne", "Bob"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(t, rows))
	})

	t.Run("UnsupportedOperator", func(t *testing.T) {
		_, err := person.Filter(ctx, st, Where("age__ge", 25))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnsupportedOperator)
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		_, err := person.Filter(ctx, st, Where("salary", 100))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownField)
	})
}

func TestFilterByID(t *testing.T) {
	ctx := context.Background()
	person, st := queryFixture(t)

	rows, err := person.Filter(ctx, st, Eq("id", 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, names(t, rows))

	rows, err = person.Filter(ctx, st, Gt("id", 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Cid"}, names(t, rows))
}

func TestFilterForeign(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	dept := reg.MustRegister("Department", String("title"))
	person := reg.MustRegister("Person",
		String("name"),
		Foreign("dept", dept, Blank()),
	)
	st := memstore.New(reg.Schemas()...)

	eng, err := dept.New(st, map[string]any{"title": "Engineering"})
	require.NoError(t, err)
	require.NoError(t, eng.Save(ctx, true))
	ops, err := dept.New(st, map[string]any{"title": "Operations"})
	require.NoError(t, err)
	require.NoError(t, ops.Save(ctx, true))

	for _, p := range []struct {
		name string
		dept *Row
	}{{"Ann", eng}, {"Bob", ops}, {"Cid", eng}} {
		row, err := person.New(st, map[string]any{"name": p.name, "dept": p.dept})
		require.NoError(t, err)
		require.NoError(t, row.Save(ctx, true))
	}

	t.Run("ByRow", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Eq("dept", eng))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ann", "Cid"}, names(t, rows))
	})

	t.Run("ByPK", func(t *testing.T) {
		rows, err := person.Filter(ctx, st, Eq("dept", ops.PK()))
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob"}, names(t, rows))
	})
}

func TestFilterCoordinate(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	site := reg.MustRegister("Site",
		String("name"),
		Coordinate("at"),
	)
	st := memstore.New(reg.Schemas()...)

	for _, s := range []struct {
		name string
		at   LatLon
	}{
		{"a", LatLon{Lat: 1.0, Lon: 2.0}},
		{"b", LatLon{Lat: 1.0, Lon: 3.0}},
		{"c", LatLon{Lat: 4.0, Lon: 2.0}},
	} {
		row, err := site.New(st, map[string]any{"name": s.name, "at": s.at})
		require.NoError(t, err)
		require.NoError(t, row.Save(ctx, true))
	}

	// Both slot probes must agree: latitude matches a and b, longitude matches
	// a and c, so only a survives the intersection.
	rows, err := site.Filter(ctx, st, Eq("at", LatLon{Lat: 1.0, Lon: 2.0}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(t, rows))

	count, err := site.Count(ctx, st, Eq("at", LatLon{Lat: 1.0, Lon: 2.0}))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFilterDateTimeFirstProbeWins(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	event := reg.MustRegister("Event",
		String("title"),
		DateTime("at"),
	)
	st := memstore.New(reg.Schemas()...)

	titles := func(rows []*Row) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			v, err := r.Get("title")
			require.NoError(t, err)
			out[i] = v.(string)
		}
		return out
	}

	jan := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	may := time.Date(2020, 5, 20, 0, 0, 0, 0, time.UTC)
	old := time.Date(1999, 5, 20, 0, 0, 0, 0, time.UTC)
	for _, e := range []struct {
		title string
		at    time.Time
	}{{"jan", jan}, {"may", may}, {"old", old}} {
		row, err := event.New(st, map[string]any{"title": e.title, "at": e.at})
		require.NoError(t, err)
		require.NoError(t, row.Save(ctx, true))
	}

	// Temporal probes resolve by significance, not intersection: the year slot
	// matches, so both 2020 events come back even though the months differ.
	rows, err := event.Filter(ctx, st, Eq("at", may))
	require.NoError(t, err)
	assert.Equal(t, []string{"jan", "may"}, titles(rows))

	// With no year matches the month slot decides.
	probe := time.Date(1980, 5, 1, 0, 0, 0, 0, time.UTC)
	rows, err = event.Filter(ctx, st, Eq("at", probe))
	require.NoError(t, err)
	assert.Equal(t, []string{"may", "old"}, titles(rows))
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	person, st := queryFixture(t)

	count, err := person.Count(ctx, st, All())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = person.Count(ctx, st, Eq("age", 30))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = person.Count(ctx, st, Eq("age", 99))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFilterBindsProbe(t *testing.T) {
	ctx := context.Background()
	person, st := queryFixture(t)

	// The probe value passes through the field's own validation.
	_, err := person.Filter(ctx, st, Eq("age", "thirty"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)
}

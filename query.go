/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"context"
	"strings"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// Query is one filter criterion: a column, an operator, and a probe value.
// The zero Query matches every row.
type Query struct {
	column string
	op     store.Operator
	value  any

	raw    string // unparsed "column[__operator]" form, resolved at translation
	hasRaw bool
	all    bool
}

// All returns the match-all query.
func All() Query {
	return Query{all: true}
}

// Where builds a query from the keyword form "column" or "column__operator"
// (operators eq, ne, gt, lt; eq when omitted). The key is validated when the
// query is translated, not when it is built.
func Where(key string, value any) Query {
	return Query{raw: key, hasRaw: true, value: value}
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Query {
	return Query{column: column, op: store.OpEqual, value: value}
}

// Ne matches rows whose column differs from value.
func Ne(column string, value any) Query {
	return Query{column: column, op: store.OpNotEqual, value: value}
}

// Gt matches rows whose column is greater than value.
func Gt(column string, value any) Query {
	return Query{column: column, op: store.OpGreaterThan, value: value}
}

// Lt matches rows whose column is less than value.
func Lt(column string, value any) Query {
	return Query{column: column, op: store.OpLessThan, value: value}
}

// resolve parses the keyword form if present and validates the operator.
func (q Query) resolve() (Query, error) {
	if !q.hasRaw && q.column == "" {
		q.all = true
	}
	if q.hasRaw {
		q.column = q.raw
		q.op = store.OpEqual
		if i := strings.Index(q.raw, "__"); i >= 0 {
			q.column = q.raw[:i]
			q.op = store.Operator(q.raw[i+2:])
		}
	}
	if q.op == store.OpAll {
		q.all = true
	}
	if !q.all && !q.op.Valid() {
		return q, errors.NewUnsupportedOperatorError(string(q.op))
	}
	return q, nil
}

// Get fetches one row by pk, composing every field from a single forward-only
// cursor over the store's flat value stream.
func (t *Table) Get(ctx context.Context, st store.Store, pk int64) (*Row, error) {
	values, version, err := st.Get(ctx, t.name, pk)
	if err != nil {
		return nil, err
	}

	cur := store.NewCursor(values)
	r := &Row{table: t, st: st, values: make(map[string]any, len(t.fieldNames))}
	for _, name := range t.fieldNames {
		composed, err := t.fields[name].compose(cur)
		if err != nil {
			return nil, err
		}
		if err := r.Set(name, composed); err != nil {
			return nil, err
		}
	}
	r.pk, r.versn = pk, version
	return r, nil
}

// Filter returns every row matching the query, hydrated via Get one store
// round trip per pk, in the pk order the store's scans produced.
func (t *Table) Filter(ctx context.Context, st store.Store, q Query) ([]*Row, error) {
	pks, err := t.scanPKs(ctx, st, q)
	if err != nil {
		return nil, err
	}
	rows := make([]*Row, 0, len(pks))
	for _, pk := range pks {
		r, err := t.Get(ctx, st, pk)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Count returns the cardinality of Filter without hydrating rows.
func (t *Table) Count(ctx context.Context, st store.Store, q Query) (int, error) {
	pks, err := t.scanPKs(ctx, st, q)
	if err != nil {
		return 0, err
	}
	return len(pks), nil
}

// scanPKs translates one criterion into store scans and combines the results.
// A multi-slot field issues one scan per slot; the pk sets intersect, except
// for temporal values, where the first slot (in significance order) returning
// a non-empty set wins.
func (t *Table) scanPKs(ctx context.Context, st store.Store, q Query) ([]int64, error) {
	q, err := q.resolve()
	if err != nil {
		return nil, err
	}
	if q.all {
		return st.Scan(ctx, t.name, store.OpAll, "", nil)
	}

	// A direct foreign reference reduces to its pk before anything else.
	value := q.value
	if row, ok := value.(*Row); ok {
		value = row.PK()
	}

	if q.column == "id" {
		if pk, ok := toInt64(value); ok {
			value = pk
		}
		return st.Scan(ctx, t.name, q.op, "id", value)
	}

	spec, ok := t.fields[q.column]
	if !ok {
		return nil, errors.NewUnknownFieldError(t.name, q.column)
	}

	stored, err := spec.bind(q.column, value)
	if err != nil {
		return nil, err
	}
	probes, err := spec.decompose(stored)
	if err != nil {
		return nil, err
	}
	slots := spec.slots(q.column)

	results := make([][]int64, len(probes))
	for i, probe := range probes {
		pks, err := st.Scan(ctx, t.name, q.op, slots[i].Name, probe)
		if err != nil {
			return nil, err
		}
		results[i] = pks
	}

	if len(results) == 1 {
		return results[0], nil
	}
	if _, temporal := spec.(*dateTimeSpec); temporal {
		return firstNonEmpty(results), nil
	}
	return intersect(results), nil
}

// firstNonEmpty applies the temporal tie-break: slots are ordered by
// significance, so the first probe with any matches decides the result.
func firstNonEmpty(results [][]int64) []int64 {
	for _, pks := range results {
		if len(pks) > 0 {
			return pks
		}
	}
	return nil
}

// intersect keeps the pks present in every probe's result, preserving the
// first probe's order.
func intersect(results [][]int64) []int64 {
	counts := make(map[int64]int)
	for _, pks := range results[1:] {
		seen := make(map[int64]bool, len(pks))
		for _, pk := range pks {
			if !seen[pk] {
				seen[pk] = true
				counts[pk]++
			}
		}
	}
	var out []int64
	need := len(results) - 1
	for _, pk := range results[0] {
		if counts[pk] == need {
			out = append(out, pk)
		}
	}
	return out
}

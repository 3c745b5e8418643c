/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package store

import "context"

// Operator selects the comparison a Scan applies to a single column.
type Operator string

const (
	// OpEqual matches rows whose column equals the probe value.
	OpEqual Operator = "eq"
	// OpNotEqual matches rows whose column differs from the probe value.
	OpNotEqual Operator = "ne"
	// OpGreaterThan matches rows whose column is greater than the probe value.
	OpGreaterThan Operator = "gt"
	// OpLessThan matches rows whose column is less than the probe value.
	OpLessThan Operator = "lt"
	// OpAll matches every row; column and value are ignored.
	OpAll Operator = "al"
)

// Valid reports whether op is one of the supported scan operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterThan, OpLessThan, OpAll:
		return true
	}
	return false
}

// Store is the persistence engine this library maps rows onto. Flat values are
// int64, float64, or string carried as any; their order is the table's
// registered column order and is the binding wire contract.
//
// A Store does not retry, reinterpret, or buffer anything on behalf of the
// caller: Get returns errors.ErrNotFound for a missing pk, and Update returns
// errors.ErrConflict when expectedVersion is stale.
type Store interface {
	// Get returns the flat values and version of the row with the given pk.
	Get(ctx context.Context, table string, pk int64) ([]any, int64, error)

	// Scan returns the pks of rows whose column satisfies op against value.
	// With OpAll, column and value are ignored and every pk is returned.
	Scan(ctx context.Context, table string, op Operator, column string, value any) ([]int64, error)

	// Insert stores a new row and returns its assigned pk and initial version.
	Insert(ctx context.Context, table string, values []any) (int64, int64, error)

	// Update replaces the row's values and returns the new version. When
	// expectedVersion > 0 the update is conditional on the stored version
	// matching; otherwise it is last-write-wins.
	Update(ctx context.Context, table string, pk int64, values []any, expectedVersion int64) (int64, error)

	// Drop removes the row with the given pk.
	Drop(ctx context.Context, table string, pk int64) error
}

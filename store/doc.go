/*
Package store defines the contract between the rowkit mapping layer and the
persistence engines underneath it.

The main interface is Store, which exchanges rows as flat, ordered value
streams:

	type Store interface {
	    Get(ctx context.Context, table string, pk int64) ([]any, int64, error)
	    Scan(ctx context.Context, table string, op Operator, column string, value any) ([]int64, error)
	    Insert(ctx context.Context, table string, values []any) (int64, int64, error)
	    Update(ctx context.Context, table string, pk int64, values []any, expectedVersion int64) (int64, error)
	    Drop(ctx context.Context, table string, pk int64) error
	}

Implementations:
  - memstore: in-memory reference implementation, used throughout the tests
  - ddb: DynamoDB implementation in a single-table layout
  - sqlitestore: SQLite implementation over database/sql

The package also carries the schema description handed to stores at bootstrap
(TableSchema, Column) and the forward-only Cursor used when a row's flat values
are composed back into field values.
*/
package store

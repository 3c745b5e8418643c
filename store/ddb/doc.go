/*
Package ddb provides a DynamoDB implementation of the store contract.

All mapped tables share one physical DynamoDB table in a single-table design:

	PK                SK                       attributes
	TABLE#Person      COUNTER                  next (pk allocator)
	TABLE#Person      ROW#00000000000000000001 rowpk, version, <columns...>

Key properties:
  - pks are allocated by an atomic ADD on the table's COUNTER item
  - row sort keys are zero-padded, so scans return ascending pk order
  - atomic updates use a ConditionExpression on the version attribute;
    a failed check surfaces as the errors package's ErrConflict
  - operator scans are partition Queries with a FilterExpression per probe

Mapped column names are stored as item attributes next to PK, SK, rowpk, and
version; schemas declaring columns with those exact names are not supported by
this backend.

Construction follows the AWS SDK v2 configuration path:

	client, err := ddb.NewClient(ctx, accessKey, secretKey, region)
	st := ddb.New(client, "rowkit-data", reg.Schemas()...)

For usage examples, see the integration tests.
*/
package ddb

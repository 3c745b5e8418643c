/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// Store implements the store contract on a single DynamoDB table. Every mapped
// table partitions under PK "TABLE#<name>"; rows sort under zero-padded
// "ROW#<pk>" keys so scans come back in ascending pk order, and a COUNTER item
// allocates pks with an atomic ADD.
//
// Mapped column names become item attributes as-is, next to the bookkeeping
// attributes PK, SK, rowpk, and version.
type Store struct {
	client    *sdk.Client
	tableName string
	schemas   map[string]store.TableSchema
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a Store over an existing DynamoDB table.
func New(client *sdk.Client, tableName string, schemas ...store.TableSchema) *Store {
	s := &Store{
		client:    client,
		tableName: tableName,
		schemas:   make(map[string]store.TableSchema, len(schemas)),
	}
	for _, sc := range schemas {
		s.schemas[sc.Name] = sc
	}
	return s
}

func (s *Store) schema(table string) (store.TableSchema, error) {
	sc, ok := s.schemas[table]
	if !ok {
		return store.TableSchema{}, fmt.Errorf("ddb: unknown table %q", table)
	}
	return sc, nil
}

func partitionKey(table string) string {
	return fmt.Sprintf("TABLE#%s", table)
}

func rowKey(pk int64) string {
	return fmt.Sprintf("ROW#%020d", pk)
}

func itemKey(table string, pk int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(table)},
		"SK": &types.AttributeValueMemberS{Value: rowKey(pk)},
	}
}

// nextPK bumps the table's COUNTER item and returns the freshly allocated pk.
func (s *Store) nextPK(ctx context.Context, table string) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey(table)},
			"SK": &types.AttributeValueMemberS{Value: "COUNTER"},
		},
		UpdateExpression: aws.String("ADD #n :one"),
		ExpressionAttributeNames: map[string]string{
			"#n": "next",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return 0, fmt.Errorf("ddb: allocating pk for %q: %w", table, err)
	}
	var pk int64
	if err := attributevalue.Unmarshal(out.Attributes["next"], &pk); err != nil {
		return 0, fmt.Errorf("ddb: reading counter for %q: %w", table, err)
	}
	return pk, nil
}

// Get fetches one row item and unpacks it into schema order.
func (s *Store) Get(ctx context.Context, table string, pk int64) ([]any, int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return nil, 0, err
	}

	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       itemKey(table, pk),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("ddb: get %s/%d: %w", table, pk, err)
	}
	if out.Item == nil {
		return nil, 0, errors.NewNotFoundError(table, pk)
	}

	values, version, err := unpackItem(sc, out.Item)
	if err != nil {
		return nil, 0, fmt.Errorf("ddb: get %s/%d: %w", table, pk, err)
	}
	return values, version, nil
}

// Scan queries the table's partition, applying the operator as a filter
// expression, and returns pks in ascending order.
func (s *Store) Scan(ctx context.Context, table string, op store.Operator, column string, value any) ([]int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return nil, err
	}

	input := &sdk.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: partitionKey(table)},
			":prefix": &types.AttributeValueMemberS{Value: "ROW#"},
		},
		ProjectionExpression: aws.String("rowpk"),
	}

	if op != store.OpAll {
		filter, names, filterValue, err := buildFilter(sc, op, column, value)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues[":v"] = filterValue
	}

	var pks []int64
	paginator := sdk.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ddb: scan %s: %w", table, err)
		}
		for _, item := range page.Items {
			var pk int64
			if err := attributevalue.Unmarshal(item["rowpk"], &pk); err != nil {
				return nil, fmt.Errorf("ddb: scan %s: %w", table, err)
			}
			pks = append(pks, pk)
		}
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i] < pks[j] })
	return pks, nil
}

// buildFilter translates one operator probe into a DynamoDB filter expression.
func buildFilter(sc store.TableSchema, op store.Operator, column string, value any) (string, map[string]string, types.AttributeValue, error) {
	cmp, err := ddbOperator(op)
	if err != nil {
		return "", nil, nil, err
	}

	attr := column
	if column == "id" {
		attr = "rowpk"
	} else if sc.Column(column) < 0 {
		return "", nil, nil, errors.NewUnknownFieldError(sc.Name, column)
	}

	av, err := attributevalue.Marshal(value)
	if err != nil {
		return "", nil, nil, fmt.Errorf("ddb: encoding probe value: %w", err)
	}
	names := map[string]string{"#c": attr}
	return fmt.Sprintf("#c %s :v", cmp), names, av, nil
}

func ddbOperator(op store.Operator) (string, error) {
	switch op {
	case store.OpEqual:
		return "=", nil
	case store.OpNotEqual:
		return "<>", nil
	case store.OpGreaterThan:
		return ">", nil
	case store.OpLessThan:
		return "<", nil
	}
	return "", errors.NewUnsupportedOperatorError(string(op))
}

// Insert allocates a pk from the counter and writes the row item at version 1.
func (s *Store) Insert(ctx context.Context, table string, values []any) (int64, int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return 0, 0, err
	}
	if len(values) != len(sc.Columns) {
		return 0, 0, fmt.Errorf("ddb: table %q expects %d values, got %d",
			table, len(sc.Columns), len(values))
	}

	pk, err := s.nextPK(ctx, table)
	if err != nil {
		return 0, 0, err
	}

	item, err := packItem(sc, pk, 1, values)
	if err != nil {
		return 0, 0, err
	}
	if _, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return 0, 0, fmt.Errorf("ddb: insert into %s: %w", table, err)
	}
	return pk, 1, nil
}

// Update rewrites the row's data attributes and bumps the version. With
// expectedVersion > 0 the write is conditional on the stored version; a failed
// condition resolves to ErrConflict for an existing row and ErrNotFound for a
// missing one.
func (s *Store) Update(ctx context.Context, table string, pk int64, values []any, expectedVersion int64) (int64, error) {
	sc, err := s.schema(table)
	if err != nil {
		return 0, err
	}
	if len(values) != len(sc.Columns) {
		return 0, fmt.Errorf("ddb: table %q expects %d values, got %d",
			table, len(sc.Columns), len(values))
	}

	update := "SET version = version + :one"
	names := make(map[string]string, len(sc.Columns))
	exprValues := map[string]types.AttributeValue{
		":one": &types.AttributeValueMemberN{Value: "1"},
	}
	for i, col := range sc.Columns {
		namePlaceholder := fmt.Sprintf("#f%d", i)
		valuePlaceholder := fmt.Sprintf(":v%d", i)
		update += fmt.Sprintf(", %s = %s", namePlaceholder, valuePlaceholder)
		names[namePlaceholder] = col.Name
		av, err := attributevalue.Marshal(values[i])
		if err != nil {
			return 0, fmt.Errorf("ddb: encoding %q: %w", col.Name, err)
		}
		exprValues[valuePlaceholder] = av
	}

	condition := "attribute_exists(PK)"
	if expectedVersion > 0 {
		condition = "version = :expected"
		exprValues[":expected"] = &types.AttributeValueMemberN{
			Value: fmt.Sprintf("%d", expectedVersion),
		}
	}

	out, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       itemKey(table, pk),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			if expectedVersion > 0 {
				// The condition fails for a missing item too; look again to
				// report the right failure.
				if _, _, gerr := s.Get(ctx, table, pk); errors.IsNotFound(gerr) {
					return 0, errors.NewNotFoundError(table, pk)
				}
				return 0, errors.NewConflictError(table, pk)
			}
			return 0, errors.NewNotFoundError(table, pk)
		}
		return 0, fmt.Errorf("ddb: update %s/%d: %w", table, pk, err)
	}

	var version int64
	if err := attributevalue.Unmarshal(out.Attributes["version"], &version); err != nil {
		return 0, fmt.Errorf("ddb: reading version of %s/%d: %w", table, pk, err)
	}
	return version, nil
}

// Drop deletes the row item.
func (s *Store) Drop(ctx context.Context, table string, pk int64) error {
	if _, err := s.schema(table); err != nil {
		return err
	}
	_, err := s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 itemKey(table, pk),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(table, pk)
		}
		return fmt.Errorf("ddb: drop %s/%d: %w", table, pk, err)
	}
	return nil
}

// packItem builds the full row item: bookkeeping attributes plus one data
// attribute per flat column.
func packItem(sc store.TableSchema, pk, version int64, values []any) (map[string]types.AttributeValue, error) {
	data := make(map[string]any, len(sc.Columns)+4)
	data["PK"] = partitionKey(sc.Name)
	data["SK"] = rowKey(pk)
	data["rowpk"] = pk
	data["version"] = version
	for i, col := range sc.Columns {
		data[col.Name] = values[i]
	}
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return nil, fmt.Errorf("ddb: encoding row item: %w", err)
	}
	return item, nil
}

// unpackItem reads a row item back into schema order.
func unpackItem(sc store.TableSchema, item map[string]types.AttributeValue) ([]any, int64, error) {
	var version int64
	if err := attributevalue.Unmarshal(item["version"], &version); err != nil {
		return nil, 0, fmt.Errorf("reading version: %w", err)
	}

	values := make([]any, len(sc.Columns))
	for i, col := range sc.Columns {
		av, ok := item[col.Name]
		if !ok {
			return nil, 0, fmt.Errorf("item missing column %q", col.Name)
		}
		switch col.Type {
		case store.TypeFloat:
			var f float64
			if err := attributevalue.Unmarshal(av, &f); err != nil {
				return nil, 0, fmt.Errorf("reading %q: %w", col.Name, err)
			}
			values[i] = f
		case store.TypeString:
			var s string
			if err := attributevalue.Unmarshal(av, &s); err != nil {
				return nil, 0, fmt.Errorf("reading %q: %w", col.Name, err)
			}
			values[i] = s
		default:
			var n int64
			if err := attributevalue.Unmarshal(av, &n); err != nil {
				return nil, 0, fmt.Errorf("reading %q: %w", col.Name, err)
			}
			values[i] = n
		}
	}
	return values, version, nil
}

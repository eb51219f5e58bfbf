// Package dynamo implements store.Store on top of Amazon DynamoDB.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"careerboard/internal/config"
	"careerboard/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const maxUnprocessedRetries = 3

// API is the subset of the DynamoDB client used by Store.
type API interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type Store struct {
	client API
	logger *log.Logger

	retryDelay time.Duration
}

func New(client API, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{client: client, logger: logger, retryDelay: 100 * time.Millisecond}
}

// Connect builds a DynamoDB client from the default AWS credential chain.
func Connect(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(client, logger), nil
}

func (s *Store) Scan(ctx context.Context, table string, filter store.Filter) ([]store.Item, error) {
	in := &dynamodb.ScanInput{TableName: aws.String(table)}
	if cond, ok := buildCondition(filter); ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("build scan filter: %w", err)
		}
		in.FilterExpression = expr.Filter()
		in.ExpressionAttributeNames = expr.Names()
		in.ExpressionAttributeValues = expr.Values()
	}

	out := make([]store.Item, 0)
	p := dynamodb.NewScanPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("scan", table, err)
		}
		items, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *Store) Query(ctx context.Context, table string, pk store.PartitionKey, filter store.Filter) ([]store.Item, error) {
	b := expression.NewBuilder().WithKeyCondition(expression.Key(pk.Name).Equal(expression.Value(pk.Value)))
	if cond, ok := buildCondition(filter); ok {
		b = b.WithFilter(cond)
	}
	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	out := make([]store.Item, 0)
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("query", table, err)
		}
		items, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, table string, item store.Item) error {
	av, err := attributevalue.MarshalMap(map[string]any(item))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(table), Item: av}); err != nil {
		return unavailable("put", table, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, table string, key store.Key, attrs store.Item) (store.Item, error) {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		if _, isKey := key[k]; isKey {
			continue
		}
		names = append(names, k)
	}
	if len(names) == 0 {
		return nil, errors.New("update requires at least one non-key attribute")
	}
	sort.Strings(names)

	upd := expression.Set(expression.Name(names[0]), expression.Value(attrs[names[0]]))
	for _, n := range names[1:] {
		upd = upd.Set(expression.Name(n), expression.Value(attrs[n]))
	}

	keyNames := make([]string, 0, len(key))
	for k := range key {
		keyNames = append(keyNames, k)
	}
	sort.Strings(keyNames)

	expr, err := expression.NewBuilder().
		WithUpdate(upd).
		WithCondition(expression.AttributeExists(expression.Name(keyNames[0]))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build update expression: %w", err)
	}

	kv, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}

	res, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       kv,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable("update", table, err)
	}

	var out map[string]any
	if err := attributevalue.UnmarshalMap(res.Attributes, &out); err != nil {
		return nil, fmt.Errorf("unmarshal updated item: %w", err)
	}
	return store.Item(out), nil
}

func (s *Store) Delete(ctx context.Context, table string, key store.Key) error {
	kv, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(table), Key: kv}); err != nil {
		return unavailable("delete", table, err)
	}
	return nil
}

func (s *Store) BatchPut(ctx context.Context, table string, items []store.Item) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > store.MaxBatchSize {
		return store.ErrBatchTooLarge
	}

	reqs := make([]types.WriteRequest, len(items))
	for i, it := range items {
		av, err := attributevalue.MarshalMap(map[string]any(it))
		if err != nil {
			return fmt.Errorf("marshal item %d: %w", i, err)
		}
		reqs[i] = types.WriteRequest{PutRequest: &types.PutRequest{Item: av}}
	}

	pending := map[string][]types.WriteRequest{table: reqs}
	for attempt := 0; ; attempt++ {
		res, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return unavailable("batch write", table, err)
		}
		if len(res.UnprocessedItems[table]) == 0 {
			return nil
		}
		if attempt >= maxUnprocessedRetries {
			s.logger.Printf("[Store] unprocessed items table=%s count=%d", table, len(res.UnprocessedItems[table]))
			return fmt.Errorf("%w: %d unprocessed items in %s", store.ErrUnavailable, len(res.UnprocessedItems[table]), table)
		}
		pending = res.UnprocessedItems

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay * time.Duration(attempt+1)):
		}
	}
}

func buildCondition(f store.Filter) (expression.ConditionBuilder, bool) {
	conds := make([]expression.ConditionBuilder, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		name := expression.Name(c.Field)
		switch c.Op {
		case store.OpEquals:
			conds = append(conds, name.Equal(expression.Value(c.Value)))
		case store.OpContains:
			conds = append(conds, name.Contains(fmt.Sprint(c.Value)))
		case store.OpAbsentOrEmpty:
			conds = append(conds, expression.Or(name.AttributeNotExists(), name.Size().Equal(expression.Value(0))))
		}
	}

	switch len(conds) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conds[0], true
	default:
		return expression.And(conds[0], conds[1], conds[2:]...), true
	}
}

func decodeItems(raw []map[string]types.AttributeValue) ([]store.Item, error) {
	var rows []map[string]any
	if err := attributevalue.UnmarshalListOfMaps(raw, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	out := make([]store.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Item(r))
	}
	return out, nil
}

func unavailable(op, table string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", store.ErrUnavailable, op, table, err)
}

var _ store.Store = (*Store)(nil)

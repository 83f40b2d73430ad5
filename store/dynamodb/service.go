// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/xmidt-org/httpaux/erraux"
)

// client captures the methods of interest from the dynamoDB API. This
// should help mock API calls as well.
type client interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// service defines the dynamodb specific DAO interface. It helps keeping middleware
// such as instrumentation orthogonal to business logic.
type service interface {
	Get(ctx context.Context, key string) ([]byte, bool, *types.ConsumedCapacity, error)
	Set(ctx context.Context, key string, value []byte) (*types.ConsumedCapacity, error)
	Remove(ctx context.Context, key string) (*types.ConsumedCapacity, error)
	Clear(ctx context.Context) (*types.ConsumedCapacity, error)
}

// executor satisfies the service interface so the DAO can then adapt the outputs
// to match the abstract store.
type executor struct {
	// c is the dynamodb client
	c client

	// tableName is the name of the dynamodb table
	tableName string

	// bucket partitions the table so several deployments can share it.
	bucket string
}

type storableItem struct {
	Bucket string `dynamodbav:"bucket"`
	ID     string `dynamodbav:"id"`
	Value  []byte `dynamodbav:"value"`
}

// Dynamo DB attribute keys
const (
	bucketAttributeKey = "bucket"
	idAttributeKey     = "id"
)

var (
	errDefaultDynamoDBFailure = &erraux.Error{
		Err:  errors.New("dynamodb operation failed"),
		Code: http.StatusInternalServerError,
	}
	errThrottled = &erraux.Error{
		Err:  errors.New("dynamodb throughput exceeded"),
		Code: http.StatusServiceUnavailable,
	}
)

// clientError pairs the raw dynamodb error with the HTTP flavored error it
// maps to, so both errors.Is on the sentinel and the status code survive.
type clientError struct {
	err     error
	errHTTP *erraux.Error
}

func (c clientError) Error() string {
	return c.errHTTP.Error() + ": " + c.err.Error()
}

func (c clientError) Unwrap() []error {
	return []error{c.err, c.errHTTP}
}

func (c clientError) StatusCode() int {
	return c.errHTTP.StatusCode()
}

func handleClientError(err error) error {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) {
		return clientError{err: err, errHTTP: errThrottled}
	}
	return clientError{err: err, errHTTP: errDefaultDynamoDBFailure}
}

func (d *executor) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		bucketAttributeKey: &types.AttributeValueMemberS{Value: d.bucket},
		idAttributeKey:     &types.AttributeValueMemberS{Value: key},
	}
}

func (d *executor) Set(ctx context.Context, key string, value []byte) (*types.ConsumedCapacity, error) {
	av, err := attributevalue.MarshalMap(storableItem{
		Bucket: d.bucket,
		ID:     key,
		Value:  value,
	})
	if err != nil {
		return nil, err
	}
	result, err := d.c.PutItem(ctx, &dynamodb.PutItemInput{
		Item:                   av,
		TableName:              aws.String(d.tableName),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	var consumedCapacity *types.ConsumedCapacity
	if result != nil {
		consumedCapacity = result.ConsumedCapacity
	}
	if err != nil {
		return consumedCapacity, handleClientError(err)
	}
	return consumedCapacity, nil
}

func (d *executor) Get(ctx context.Context, key string) ([]byte, bool, *types.ConsumedCapacity, error) {
	result, err := d.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    d.itemKey(key),
		ConsistentRead:         aws.Bool(true),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, false, nil, handleClientError(err)
	}
	if len(result.Item) == 0 {
		return nil, false, result.ConsumedCapacity, nil
	}
	item := new(storableItem)
	err = attributevalue.UnmarshalMap(result.Item, item)
	if err != nil {
		return nil, false, result.ConsumedCapacity, err
	}
	return item.Value, true, result.ConsumedCapacity, nil
}

func (d *executor) Remove(ctx context.Context, key string) (*types.ConsumedCapacity, error) {
	result, err := d.c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    d.itemKey(key),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, handleClientError(err)
	}
	return result.ConsumedCapacity, nil
}

// Clear deletes every item of the bucket partition page by page.
func (d *executor) Clear(ctx context.Context) (*types.ConsumedCapacity, error) {
	total := &types.ConsumedCapacity{CapacityUnits: aws.Float64(0)}
	var startKey map[string]types.AttributeValue
	for {
		page, err := d.c.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.tableName),
			KeyConditionExpression: aws.String("#b = :b"),
			ExpressionAttributeNames: map[string]string{
				"#b": bucketAttributeKey,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":b": &types.AttributeValueMemberS{Value: d.bucket},
			},
			ProjectionExpression:   aws.String("#b, id"),
			ExclusiveStartKey:      startKey,
			ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
		})
		if err != nil {
			return total, handleClientError(err)
		}
		addCapacity(total, page.ConsumedCapacity)

		for _, i := range page.Items {
			item := new(storableItem)
			if err := attributevalue.UnmarshalMap(i, item); err != nil || item.ID == "" {
				continue
			}
			cc, err := d.Remove(ctx, item.ID)
			addCapacity(total, cc)
			if err != nil {
				return total, err
			}
		}

		if len(page.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = page.LastEvaluatedKey
	}
}

func addCapacity(total, cc *types.ConsumedCapacity) {
	if cc == nil || cc.CapacityUnits == nil {
		return
	}
	*total.CapacityUnits += *cc.CapacityUnits
}

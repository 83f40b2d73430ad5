// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTableName  = "table01"
	testBucketName = "bucket01"
	testKey        = "repos"
)

var testValue = []byte(`{"value":{"repos":[]},"timestamp":1,"ttl":2}`)

func newTestExecutor(m *mockClient) *executor {
	return &executor{c: m, tableName: testTableName, bucket: testBucketName}
}

func storedAttributes(id string, value []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		bucketAttributeKey: &types.AttributeValueMemberS{Value: testBucketName},
		idAttributeKey:     &types.AttributeValueMemberS{Value: id},
		"value":            &types.AttributeValueMemberB{Value: value},
	}
}

func TestSet(t *testing.T) {
	assert := assert.New(t)
	m := new(mockClient)
	cc := &types.ConsumedCapacity{CapacityUnits: aws.Float64(1)}
	m.On("PutItem", mock.Anything, mock.MatchedBy(func(input *dynamodb.PutItemInput) bool {
		id, _ := input.Item[idAttributeKey].(*types.AttributeValueMemberS)
		bucket, _ := input.Item[bucketAttributeKey].(*types.AttributeValueMemberS)
		value, _ := input.Item["value"].(*types.AttributeValueMemberB)
		return aws.ToString(input.TableName) == testTableName &&
			id != nil && id.Value == testKey &&
			bucket != nil && bucket.Value == testBucketName &&
			value != nil && string(value.Value) == string(testValue)
	})).Return(&dynamodb.PutItemOutput{ConsumedCapacity: cc}, nil)

	actual, err := newTestExecutor(m).Set(context.Background(), testKey, testValue)
	assert.NoError(err)
	assert.Equal(cc, actual)
	m.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	tcs := []struct {
		Description   string
		Output        *dynamodb.GetItemOutput
		ExpectedOK    bool
		ExpectedValue []byte
	}{
		{
			Description: "Missing",
			Output:      &dynamodb.GetItemOutput{},
		},
		{
			Description:   "Found",
			Output:        &dynamodb.GetItemOutput{Item: storedAttributes(testKey, testValue)},
			ExpectedOK:    true,
			ExpectedValue: testValue,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			m := new(mockClient)
			m.On("GetItem", mock.Anything, mock.MatchedBy(func(input *dynamodb.GetItemInput) bool {
				return aws.ToBool(input.ConsistentRead) && aws.ToString(input.TableName) == testTableName
			})).Return(tc.Output, nil)

			value, ok, _, err := newTestExecutor(m).Get(context.Background(), testKey)
			assert.NoError(err)
			assert.Equal(tc.ExpectedOK, ok)
			assert.Equal(tc.ExpectedValue, value)
		})
	}
}

func TestClientErrors(t *testing.T) {
	tcs := []struct {
		Description  string
		DynamoErr    error
		ExpectedCode int
	}{
		{
			Description:  "Throttled",
			DynamoErr:    &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")},
			ExpectedCode: http.StatusServiceUnavailable,
		},
		{
			Description:  "Generic failure",
			DynamoErr:    errors.New("boom"),
			ExpectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			m := new(mockClient)
			m.On("PutItem", mock.Anything, mock.Anything).Return(nil, tc.DynamoErr)
			m.On("GetItem", mock.Anything, mock.Anything).Return(nil, tc.DynamoErr)
			m.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, tc.DynamoErr)
			m.On("Query", mock.Anything, mock.Anything).Return(nil, tc.DynamoErr)
			e := newTestExecutor(m)
			ctx := context.Background()

			_, setErr := e.Set(ctx, testKey, testValue)
			_, _, _, getErr := e.Get(ctx, testKey)
			_, removeErr := e.Remove(ctx, testKey)
			_, clearErr := e.Clear(ctx)

			for _, err := range []error{setErr, getErr, removeErr, clearErr} {
				require.Error(err)
				assert.ErrorIs(err, tc.DynamoErr)
				var coder interface{ StatusCode() int }
				require.True(errors.As(err, &coder))
				assert.Equal(tc.ExpectedCode, coder.StatusCode())
			}
		})
	}
}

func TestClearPaginates(t *testing.T) {
	assert := assert.New(t)
	m := new(mockClient)
	lastKey := map[string]types.AttributeValue{
		bucketAttributeKey: &types.AttributeValueMemberS{Value: testBucketName},
		idAttributeKey:     &types.AttributeValueMemberS{Value: "a"},
	}
	m.On("Query", mock.Anything, mock.MatchedBy(func(input *dynamodb.QueryInput) bool {
		return input.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{storedAttributes("a", nil)},
		LastEvaluatedKey: lastKey,
	}, nil).Once()
	m.On("Query", mock.Anything, mock.MatchedBy(func(input *dynamodb.QueryInput) bool {
		return input.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{storedAttributes("b", nil)},
	}, nil).Once()
	m.On("DeleteItem", mock.Anything, mock.Anything).Return(&dynamodb.DeleteItemOutput{
		ConsumedCapacity: &types.ConsumedCapacity{CapacityUnits: aws.Float64(1)},
	}, nil).Twice()

	cc, err := newTestExecutor(m).Clear(context.Background())
	assert.NoError(err)
	assert.Equal(2.0, aws.ToFloat64(cc.CapacityUnits))
	m.AssertExpectations(t)
}

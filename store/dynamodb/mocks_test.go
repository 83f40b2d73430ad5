// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/db/metric"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutItem(ctx context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) GetItem(ctx context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) Query(ctx context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Get(ctx context.Context, key string) ([]byte, bool, *types.ConsumedCapacity, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	cc, _ := args.Get(2).(*types.ConsumedCapacity)
	return value, args.Bool(1), cc, args.Error(3)
}

func (m *mockService) Set(ctx context.Context, key string, value []byte) (*types.ConsumedCapacity, error) {
	args := m.Called(ctx, key, value)
	cc, _ := args.Get(0).(*types.ConsumedCapacity)
	return cc, args.Error(1)
}

func (m *mockService) Remove(ctx context.Context, key string) (*types.ConsumedCapacity, error) {
	args := m.Called(ctx, key)
	cc, _ := args.Get(0).(*types.ConsumedCapacity)
	return cc, args.Error(1)
}

func (m *mockService) Clear(ctx context.Context) (*types.ConsumedCapacity, error) {
	args := m.Called(ctx)
	cc, _ := args.Get(0).(*types.ConsumedCapacity)
	return cc, args.Error(1)
}

func newTestMeasures() metric.Measures {
	counter := func(name string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name}, []string{store.TypeLabel})
	}
	return metric.Measures{
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: metric.QueryDurationSeconds, Help: metric.QueryDurationSeconds},
			[]string{store.TypeLabel},
		),
		QuerySuccess:                   counter(metric.QuerySuccessCounter),
		QueryFailure:                   counter(metric.QueryFailureCounter),
		CapacityUnitConsumedCount:      counter(metric.CapacityUnitConsumedCounter),
		ReadCapacityUnitConsumedCount:  counter(metric.ReadCapacityConsumedCounter),
		WriteCapacityUnitConsumedCount: counter(metric.WriteCapacityConsumedCounter),
	}
}

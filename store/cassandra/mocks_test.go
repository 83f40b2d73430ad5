// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/db/metric"
)

type mockDB struct {
	mock.Mock
}

func (s *mockDB) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	args := s.Called(bucket, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

func (s *mockDB) Set(ctx context.Context, bucket, key string, value []byte) error {
	args := s.Called(bucket, key, value)
	return args.Error(0)
}

func (s *mockDB) Remove(ctx context.Context, bucket, key string) error {
	args := s.Called(bucket, key)
	return args.Error(0)
}

func (s *mockDB) Clear(ctx context.Context, bucket string) error {
	args := s.Called(bucket)
	return args.Error(0)
}

func (s *mockDB) Close() {
	s.Called()
}

func (s *mockDB) Ping() error {
	args := s.Called()
	return args.Error(0)
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

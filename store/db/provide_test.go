// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/cassandra"
	"github.com/xmidt-org/repodeck/store/db/metric"
	"github.com/xmidt-org/repodeck/store/dynamodb"
	"github.com/xmidt-org/repodeck/store/inmem"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewBackend(t *testing.T) {
	tcs := []struct {
		Description string
		Configs     Configs
		Expected    func(*testing.T, store.S)
		ExpectedErr bool
	}{
		{
			Description: "Default inmem",
			Expected: func(t *testing.T, s store.S) {
				assert.IsType(t, &inmem.InMem{}, s)
			},
		},
		{
			Description: "Storage unavailable",
			Configs:     Configs{Type: None},
			Expected: func(t *testing.T, s store.S) {
				assert.Equal(t, store.Nop{}, s)
			},
		},
		{
			Description: "Dynamo by presence",
			Configs:     Configs{Dynamo: &dynamodb.Config{Region: "us-east-1"}},
			Expected: func(t *testing.T, s store.S) {
				assert.IsType(t, &store.Lazy{}, s)
			},
		},
		{
			Description: "Yugabyte by presence",
			Configs:     Configs{Yugabyte: &cassandra.Config{Hosts: []string{"localhost"}}},
			Expected: func(t *testing.T, s store.S) {
				assert.IsType(t, &store.Lazy{}, s)
			},
		},
		{
			Description: "Dynamo without region",
			Configs:     Configs{Dynamo: &dynamodb.Config{Table: "repodeck"}},
			ExpectedErr: true,
		},
		{
			Description: "Dynamo without section",
			Configs:     Configs{Type: DynamoDB},
			ExpectedErr: true,
		},
		{
			Description: "Unknown type",
			Configs:     Configs{Type: "indexeddb"},
			ExpectedErr: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			s, err := newBackend(SetupIn{
				Configs:  tc.Configs,
				Measures: newTestMeasures(),
				LC:       fxtest.NewLifecycle(t),
				Logger:   zap.NewNop(),
			})
			if tc.ExpectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.Expected(t, s)
		})
	}
}

func TestInstrument(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	measures := newTestMeasures()
	s := Instrument(inmem.NewInMem(), measures, zap.NewNop())
	ctx := context.Background()

	require.NoError(s.Set(ctx, "repos", []byte("v")))
	value, ok, err := s.Get(ctx, "repos")
	require.NoError(err)
	assert.True(ok)
	assert.Equal([]byte("v"), value)
	assert.Error(s.Set(ctx, "", nil))
	require.NoError(s.Remove(ctx, "repos"))
	require.NoError(s.Clear(ctx))

	assert.Equal(1.0, testutil.ToFloat64(measures.QuerySuccess.WithLabelValues(store.InsertType)))
	assert.Equal(1.0, testutil.ToFloat64(measures.QueryFailure.WithLabelValues(store.InsertType)))
	assert.Equal(1.0, testutil.ToFloat64(measures.QuerySuccess.WithLabelValues(store.ReadType)))
	assert.Equal(1.0, testutil.ToFloat64(measures.QuerySuccess.WithLabelValues(store.DeleteType)))
	assert.Equal(1.0, testutil.ToFloat64(measures.QuerySuccess.WithLabelValues(store.ClearType)))
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

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Generic Metrics
const (
	QueryDurationSeconds = "store_query_duration_seconds"
	QuerySuccessCounter  = "store_query_success_count"
	QueryFailureCounter  = "store_query_failure_count"
)

// DynamoDB metrics
const (
	CapacityUnitConsumedCounter  = "capacity_unit_consumed"
	ReadCapacityConsumedCounter  = "read_capacity_unit_consumed"
	WriteCapacityConsumedCounter = "write_capacity_unit_consumed"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    QueryDurationSeconds,
				Help:    "A histogram of latencies for store operations.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160},
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QuerySuccessCounter,
				Help: "The total number of successful store operations",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QueryFailureCounter,
				Help: "The total number of failed store operations",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: CapacityUnitConsumedCounter,
				Help: "The number of capacity units consumed by the operation.",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ReadCapacityConsumedCounter,
				Help: "The number of read capacity units consumed by the operation.",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: WriteCapacityConsumedCounter,
				Help: "The number of write capacity units consumed by the operation.",
			},
			store.TypeLabel,
		),
	)
}

type Measures struct {
	fx.In
	QueryDuration *prometheus.HistogramVec `name:"store_query_duration_seconds"`
	QuerySuccess  *prometheus.CounterVec   `name:"store_query_success_count"`
	QueryFailure  *prometheus.CounterVec   `name:"store_query_failure_count"`

	// DynamoDB Metrics
	CapacityUnitConsumedCount      *prometheus.CounterVec `name:"capacity_unit_consumed"`
	ReadCapacityUnitConsumedCount  *prometheus.CounterVec `name:"read_capacity_unit_consumed"`
	WriteCapacityUnitConsumedCount *prometheus.CounterVec `name:"write_capacity_unit_consumed"`
}

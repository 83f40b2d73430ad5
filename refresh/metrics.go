// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	CycleCounter      = "refresh_cycles_total"
	DroppedCounter    = "refresh_requests_dropped_total"
	SubscribersGauge  = "refresh_subscribers"
	CycleDurationHist = "refresh_cycle_duration_seconds"
)

// Labels
const (
	OutcomeLabel = "outcome"
	ForceLabel   = "force"
)

// Label Values
const (
	HitOutcome     = "hit"
	FetchedOutcome = "fetched"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: CycleCounter,
				Help: "Counter for completed refresh cycles by outcome.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: DroppedCounter,
				Help: "Counter for refresh requests dropped because a cycle was in flight.",
			},
			ForceLabel,
		),
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    CycleDurationHist,
				Help:    "Duration of refresh cycles by outcome.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			OutcomeLabel,
		),
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: SubscribersGauge,
				Help: "Current number of repository collection subscribers.",
			},
		),
	)
}

type Measures struct {
	fx.In
	Cycles        *prometheus.CounterVec   `name:"refresh_cycles_total"`
	Dropped       *prometheus.CounterVec   `name:"refresh_requests_dropped_total"`
	CycleDuration *prometheus.HistogramVec `name:"refresh_cycle_duration_seconds"`
	Subscribers   prometheus.Gauge         `name:"refresh_subscribers"`
}

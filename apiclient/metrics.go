// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	RequestCounter = "remote_api_requests_total"
)

// Labels
const (
	APILabel     = "api"
	OutcomeLabel = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"

	reposAPI  = "repos"
	stateAPI  = "state"
	buildsAPI = "builds"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestCounter,
				Help: "Counter for the requests sent to the remote APIs and their outcomes.",
			},
			APILabel, OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Requests *prometheus.CounterVec `name:"remote_api_requests_total"`
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/repodeck/api"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type PrimaryRoutesIn struct {
	fx.In
	Server   *http.Server                 `name:"servers.primary"`
	Metrics  touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	Tracing  candlelight.Tracing
	Auth     alice.Chain `name:"auth_chain"`
	Logger   *zap.Logger
	Handlers PrimaryHandlersIn
}

type PrimaryHandlersIn struct {
	fx.In
	Refresh api.Handler `name:"refresh_handler"`
	List    api.Handler `name:"list_handler"`
	Lookup  api.Handler `name:"lookup_handler"`
	State   api.Handler `name:"state_handler"`
	Build   api.Handler `name:"build_handler"`
	Events  api.Handler `name:"events_handler"`
}

func provideServerInstrumenters() fx.Option {
	return fx.Provide(
		fx.Annotated{
			Name: "servers.primary.metrics",
			Target: touchhttp.ServerBundle{}.NewInstrumenter(
				touchhttp.ServerLabel, "primary",
			),
		},
		fx.Annotated{
			Name: "servers.health.metrics",
			Target: touchhttp.ServerBundle{}.NewInstrumenter(
				touchhttp.ServerLabel, "health",
			),
		},
	)
}

// BuildPrimaryRoutes mounts the repository API on the primary server.
func BuildPrimaryRoutes(in PrimaryRoutesIn) {
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware("server_primary",
			otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
			otelmux.WithPropagators(in.Tracing.Propagator()),
		),
	)

	base := router.PathPrefix(fmt.Sprintf("/%s", apiBase)).Subrouter()
	base.Handle("/repos/refresh", in.Auth.Then(in.Handlers.Refresh)).Methods(http.MethodPost)
	base.Handle("/repos", in.Handlers.List).Methods(http.MethodGet)
	base.Handle("/repos/{app}", in.Handlers.Lookup).Methods(http.MethodGet)
	base.Handle("/repos/{app}/state", in.Handlers.State).Methods(http.MethodGet)
	base.Handle("/builds", in.Auth.Then(in.Handlers.Build)).Methods(http.MethodPost)
	base.Handle("/events", in.Handlers.Events).Methods(http.MethodGet)

	in.Server.Handler = alice.New(
		alice.Constructor(recovery.Middleware(recovery.WithStatusCode(555))),
		alice.Constructor(in.Metrics.Then),
		alice.Constructor(candlelight.EchoFirstTraceNodeInfo(in.Tracing, false)),
		api.Logging(in.Logger.Named("http")),
	).Then(router)
}

type MetricsRoutesIn struct {
	fx.In
	Server   *http.Server `name:"servers.metrics"`
	Path     MetricsPath
	Gatherer prometheus.Gatherer
}

// BuildMetricsRoutes exposes the prometheus registry.
func BuildMetricsRoutes(in MetricsRoutesIn) {
	router := mux.NewRouter()
	router.Handle(string(in.Path), promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	in.Server.Handler = router
}

type HealthRoutesIn struct {
	fx.In
	Server  *http.Server `name:"servers.health"`
	Path    HealthPath
	Metrics touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
}

// BuildHealthRoutes answers liveness probes.
func BuildHealthRoutes(in HealthRoutesIn) {
	router := mux.NewRouter()
	router.Handle(string(in.Path), httpaux.ConstantHandler{
		StatusCode: http.StatusOK,
	}).Methods(http.MethodGet)
	in.Server.Handler = in.Metrics.Then(router)
}

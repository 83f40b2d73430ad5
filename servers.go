// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig is the configuration of one HTTP server.
type ServerConfig struct {
	Address           string
	Path              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	Disabled          bool
}

type ServersOut struct {
	fx.Out
	Primary *http.Server `name:"servers.primary"`
	Metrics *http.Server `name:"servers.metrics"`
	Health  *http.Server `name:"servers.health"`

	MetricsPath MetricsPath
	HealthPath  HealthPath
}

type MetricsPath string

type HealthPath string

type serversIn struct {
	fx.In
	Viper  *viper.Viper
	Logger *zap.Logger
	LC     fx.Lifecycle
}

func provideServers() fx.Option {
	return fx.Provide(
		func(in serversIn) (ServersOut, error) {
			var out ServersOut
			for _, s := range []struct {
				name   string
				target **http.Server
				path   *string
			}{
				{name: "primary", target: &out.Primary},
				{name: "metrics", target: &out.Metrics, path: (*string)(&out.MetricsPath)},
				{name: "health", target: &out.Health, path: (*string)(&out.HealthPath)},
			} {
				var config ServerConfig
				if err := in.Viper.UnmarshalKey("servers."+s.name, &config); err != nil {
					return ServersOut{}, err
				}
				if s.path != nil {
					*s.path = config.Path
				}
				*s.target = newServer(config)
				if !config.Disabled {
					bindServer(in.LC, *s.target, in.Logger.With(zap.String("server", s.name)))
				}
			}
			return out, nil
		},
	)
}

func newServer(config ServerConfig) *http.Server {
	return &http.Server{
		Addr:              config.Address,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		IdleTimeout:       config.IdleTimeout,
		Handler:           http.NotFoundHandler(),
	}
}

// bindServer starts s with the application and drains it on stop.
func bindServer(lc fx.Lifecycle, s *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			l, err := new(net.ListenConfig).Listen(ctx, "tcp", s.Addr)
			if err != nil {
				return err
			}
			logger.Info("starting server", zap.String("address", l.Addr().String()))
			go func() {
				if err := s.Serve(l); !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return s.Shutdown(ctx)
		},
	})
}

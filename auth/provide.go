// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"github.com/justinas/alice"
	"github.com/spf13/viper"
	"github.com/xmidt-org/bascule/basculehttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigKey is the configuration section of the inbound credentials.
const ConfigKey = "auth"

type ChainIn struct {
	fx.In
	Viper    *viper.Viper
	Measures basculehttp.AuthValidationMeasures
	Logger   *zap.Logger
}

// Provide exposes the auth middleware as the alice.Chain named "auth_chain".
func Provide() fx.Option {
	return fx.Options(
		basculehttp.ProvideMetrics(),
		fx.Provide(
			fx.Annotated{
				Name: "auth_chain",
				Target: func(in ChainIn) (alice.Chain, error) {
					var config Config
					if err := in.Viper.UnmarshalKey(ConfigKey, &config); err != nil {
						return alice.Chain{}, err
					}
					resolver, err := NewResolver(config.Bearer)
					if err != nil {
						return alice.Chain{}, err
					}
					measures := in.Measures
					return NewChain(config, resolver, &measures, in.Logger.Named("auth"))
				},
			},
		),
	)
}

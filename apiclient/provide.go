// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigKey is the configuration section of the remote APIs.
const ConfigKey = "remote"

type ClientIn struct {
	fx.In
	Viper    *viper.Viper
	Measures Measures
	Logger   *zap.Logger
}

type ClientOut struct {
	fx.Out
	Client  *Client
	Reader  ReposReader
	Trigger BuildTrigger
}

// Provide builds the remote API client and exposes it through its interfaces.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			func(in ClientIn) (ClientOut, error) {
				var config Config
				if err := in.Viper.UnmarshalKey(ConfigKey, &config); err != nil {
					return ClientOut{}, err
				}
				measures := in.Measures
				c, err := New(config, &measures, in.Logger.Named("apiclient"))
				if err != nil {
					return ClientOut{}, err
				}
				return ClientOut{Client: c, Reader: c, Trigger: c}, nil
			},
		),
	)
}

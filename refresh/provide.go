// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"github.com/spf13/viper"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/repodeck/notify"
	"github.com/xmidt-org/repodeck/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigKey is the configuration section of the coordinator.
const ConfigKey = "refresh"

type CoordinatorIn struct {
	fx.In
	Viper    *viper.Viper
	Store    store.S
	Reader   apiclient.ReposReader
	Notifier *notify.Notifier
	Measures Measures
	Logger   *zap.Logger
	LC       fx.Lifecycle
}

// Provide builds the single coordinator of the application and ties its
// background refreshes to the application lifecycle.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			notify.New,
			func(in CoordinatorIn) (*Coordinator, error) {
				var config Config
				if err := in.Viper.UnmarshalKey(ConfigKey, &config); err != nil {
					return nil, err
				}
				measures := in.Measures
				c, err := New(config, in.Store, in.Reader, in.Notifier, &measures, in.Logger.Named("refresh"))
				if err != nil {
					return nil, err
				}
				in.LC.Append(fx.Hook{
					OnStart: c.Start,
					OnStop:  c.Stop,
				})
				return c, nil
			},
		),
	)
}

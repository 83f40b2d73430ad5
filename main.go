// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/repodeck/api"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/repodeck/auth"
	"github.com/xmidt-org/repodeck/refresh"
	"github.com/xmidt-org/repodeck/store/db"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const (
	applicationName = "repodeck"
	apiBase         = "api/v1"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Supply(logger, v),
		touchstone.Provide(),
		db.Provide(),
		apiclient.Provide(),
		auth.Provide(),
		refresh.Provide(),
		api.ProvideHandlers(),
		provideServers(),
		provideServerInstrumenters(),
		fx.Provide(
			unmarshalStoreConfig,
			unmarshalTouchstoneConfig,
			unmarshalTracingConfig,
			candlelight.New,
		),
		fx.Invoke(
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
			BuildHealthRoutes,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func unmarshalStoreConfig(v *viper.Viper) (db.Configs, error) {
	var config db.Configs
	err := v.UnmarshalKey("store", &config)
	return config, err
}

func unmarshalTouchstoneConfig(v *viper.Viper) (touchstone.Config, error) {
	var config touchstone.Config
	err := v.UnmarshalKey("prometheus", &config)
	return config, err
}

func unmarshalTracingConfig(v *viper.Viper) (candlelight.Config, error) {
	var config candlelight.Config
	if err := v.UnmarshalKey("tracing", &config); err != nil {
		return candlelight.Config{}, err
	}
	config.ApplicationName = applicationName
	return config, nil
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/spf13/viper"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/repodeck/notify"
	"github.com/xmidt-org/repodeck/refresh"
	"go.uber.org/fx"
)

type handlerIn struct {
	fx.In

	Coordinator *refresh.Coordinator
	Notifier    *notify.Notifier
	Trigger     apiclient.BuildTrigger
	Config      *transportConfig
	Events      EventsConfig
}

type HandlersOut struct {
	fx.Out

	Refresh Handler `name:"refresh_handler"`
	List    Handler `name:"list_handler"`
	Lookup  Handler `name:"lookup_handler"`
	State   Handler `name:"state_handler"`
	Build   Handler `name:"build_handler"`
	Events  Handler `name:"events_handler"`
}

// ProvideHandlers builds every handler of the primary API.
func ProvideHandlers() fx.Option {
	return fx.Provide(
		func(v *viper.Viper) (*transportConfig, error) {
			var config UserInputValidationConfig
			if err := v.UnmarshalKey("userInputValidation", &config); err != nil {
				return nil, err
			}
			return newTransportConfig(config)
		},
		func(v *viper.Viper) (EventsConfig, error) {
			var config EventsConfig
			err := v.UnmarshalKey("events", &config)
			return config, err
		},
		func(in handlerIn) HandlersOut {
			return HandlersOut{
				Refresh: newRefreshHandler(in.Coordinator),
				List:    newListHandler(in.Coordinator, in.Config),
				Lookup:  newLookupHandler(in.Coordinator, in.Config),
				State:   newStateHandler(in.Coordinator, in.Config),
				Build:   newBuildHandler(in.Coordinator, in.Trigger, in.Config),
				Events:  newEventsHandler(in.Coordinator, in.Notifier, in.Events),
			}
		},
	)
}

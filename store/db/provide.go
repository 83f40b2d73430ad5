// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"fmt"

	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/cassandra"
	"github.com/xmidt-org/repodeck/store/db/metric"
	"github.com/xmidt-org/repodeck/store/dynamodb"
	"github.com/xmidt-org/repodeck/store/inmem"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Store types
const (
	InMem    = "inmem"
	DynamoDB = "dynamo"
	Yugabyte = "yugabyte"
	None     = "none"
)

type Configs struct {
	// Type forces a backend. When empty the first configured backend wins
	// and inmem is the fallback.
	Type string

	Dynamo   *dynamodb.Config
	Yugabyte *cassandra.Config
}

type SetupIn struct {
	fx.In
	Configs  Configs
	Measures metric.Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		metric.ProvideMetrics(),
		fx.Provide(
			SetupStore,
		),
	)
}

// SetupStore selects the store backend once, at construction.
func SetupStore(in SetupIn) (store.S, error) {
	s, err := newBackend(in)
	if err != nil {
		return nil, err
	}
	return Instrument(s, in.Measures, in.Logger), nil
}

func newBackend(in SetupIn) (store.S, error) {
	kind := in.Configs.Type
	if kind == "" {
		switch {
		case in.Configs.Dynamo != nil:
			kind = DynamoDB
		case in.Configs.Yugabyte != nil:
			kind = Yugabyte
		default:
			kind = InMem
		}
	}

	switch kind {
	case None:
		in.Logger.Info("no durable storage available, cache always misses")
		return store.Nop{}, nil
	case DynamoDB:
		if in.Configs.Dynamo == nil {
			return nil, fmt.Errorf("store type %q requires a dynamo section", kind)
		}
		in.Logger.Info("using dynamodb store implementation")
		return dynamodb.NewDynamoDB(*in.Configs.Dynamo, in.Measures, in.Logger)
	case Yugabyte:
		if in.Configs.Yugabyte == nil {
			return nil, fmt.Errorf("store type %q requires a yugabyte section", kind)
		}
		in.Logger.Info("using yugabyte store implementation")
		return cassandra.NewCassandra(*in.Configs.Yugabyte, in.Measures, in.LC, in.Logger)
	case InMem:
		in.Logger.Info("using in memory store implementation")
		return inmem.NewInMem(), nil
	}
	return nil, fmt.Errorf("unknown store type %q", kind)
}

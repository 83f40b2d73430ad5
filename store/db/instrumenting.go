// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/db/metric"
	"go.uber.org/zap"
)

type instrumentingStore struct {
	store.S
	measures    metric.Measures
	debugLogger *zap.Logger
	now         func() time.Time
}

// Instrument decorates s with operation metrics and debug logging.
func Instrument(s store.S, measures metric.Measures, logger *zap.Logger) store.S {
	return &instrumentingStore{
		S:           s,
		measures:    measures,
		debugLogger: logger.Named("store"),
		now:         time.Now,
	}
}

func (s *instrumentingStore) observe(action string, start time.Time, err error, fields ...zap.Field) {
	labels := prometheus.Labels{store.TypeLabel: action}
	s.measures.QueryDuration.With(labels).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		s.measures.QueryFailure.With(labels).Inc()
	} else {
		s.measures.QuerySuccess.With(labels).Inc()
	}
	s.debugLogger.Debug("store operation", append(fields, zap.String(store.TypeLabel, action), zap.Error(err))...)
}

func (s *instrumentingStore) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	defer func(start time.Time) {
		s.observe(store.ReadType, start, err, zap.String("key", key), zap.Bool("found", ok), zap.Int("size", len(value)))
	}(s.now())
	return s.S.Get(ctx, key)
}

func (s *instrumentingStore) Set(ctx context.Context, key string, value []byte) (err error) {
	defer func(start time.Time) {
		s.observe(store.InsertType, start, err, zap.String("key", key), zap.Int("size", len(value)))
	}(s.now())
	return s.S.Set(ctx, key, value)
}

func (s *instrumentingStore) Remove(ctx context.Context, key string) (err error) {
	defer func(start time.Time) {
		s.observe(store.DeleteType, start, err, zap.String("key", key))
	}(s.now())
	return s.S.Remove(ctx, key)
}

func (s *instrumentingStore) Clear(ctx context.Context) (err error) {
	defer func(start time.Time) {
		s.observe(store.ClearType, start, err)
	}(s.now())
	return s.S.Clear(ctx)
}

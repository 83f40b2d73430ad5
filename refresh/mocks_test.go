// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package refresh

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/repodeck/model"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) GetRepositories(ctx context.Context) (model.Repositories, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Repositories), args.Error(1)
}

func (m *mockReader) GetRepositoryState(ctx context.Context, app string) (model.RepositoryState, error) {
	args := m.Called(ctx, app)
	return args.Get(0).(model.RepositoryState), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).([]byte)
	return v, args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// blockingReader fetches only once released, or fails when its context ends.
type blockingReader struct {
	repos   model.Repositories
	started chan struct{}
	release chan struct{}

	lock  sync.Mutex
	calls int
}

func newBlockingReader(repos model.Repositories) *blockingReader {
	return &blockingReader{
		repos:   repos,
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (b *blockingReader) GetRepositories(ctx context.Context) (model.Repositories, error) {
	b.lock.Lock()
	b.calls++
	b.lock.Unlock()
	b.started <- struct{}{}
	select {
	case <-b.release:
		return b.repos, nil
	case <-ctx.Done():
		return model.Repositories{}, ctx.Err()
	}
}

func (b *blockingReader) GetRepositoryState(context.Context, string) (model.RepositoryState, error) {
	return model.RepositoryState{}, nil
}

func (b *blockingReader) Calls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.calls
}

type recorder struct {
	lock   sync.Mutex
	events []Event
}

func (r *recorder) Update(e Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Event(nil), r.events...)
}

func newTestMeasures() *Measures {
	return &Measures{
		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testRefreshCycles", Help: "testRefreshCycles"},
			[]string{OutcomeLabel},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testRefreshDropped", Help: "testRefreshDropped"},
			[]string{ForceLabel},
		),
		CycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "testRefreshCycleDuration", Help: "testRefreshCycleDuration"},
			[]string{OutcomeLabel},
		),
		Subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "testRefreshSubscribers", Help: "testRefreshSubscribers"},
		),
	}
}

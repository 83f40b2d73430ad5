// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/repodeck/model"
	"github.com/xmidt-org/repodeck/refresh"
)

type mockRepositories struct {
	mock.Mock
}

func (m *mockRepositories) RequestRefresh(force bool) bool {
	return m.Called(force).Bool(0)
}

func (m *mockRepositories) Latest() (model.Repositories, bool) {
	args := m.Called()
	return args.Get(0).(model.Repositories), args.Bool(1)
}

func (m *mockRepositories) Lookup(ctx context.Context, app string) (model.LookupResult, bool, error) {
	args := m.Called(ctx, app)
	return args.Get(0).(model.LookupResult), args.Bool(1), args.Error(2)
}

func (m *mockRepositories) RepositoryState(ctx context.Context, app string) (model.RepositoryState, error) {
	args := m.Called(ctx, app)
	return args.Get(0).(model.RepositoryState), args.Error(1)
}

func (m *mockRepositories) Subscribe(l refresh.Listener) func() {
	return m.Called(l).Get(0).(func())
}

type mockTrigger struct {
	mock.Mock
}

func (m *mockTrigger) TriggerBuild(ctx context.Context, request model.BuildRequest) (model.BuildResponse, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(model.BuildResponse), args.Error(1)
}

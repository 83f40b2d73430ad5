// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-playground/validator/v10"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/repodeck/model"
	"github.com/xmidt-org/repodeck/refresh"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Repositories is the read and refresh side of the repository cache.
type Repositories interface {
	RequestRefresh(force bool) bool
	Latest() (model.Repositories, bool)
	Lookup(ctx context.Context, app string) (model.LookupResult, bool, error)
	RepositoryState(ctx context.Context, app string) (model.RepositoryState, error)
	Subscribe(l refresh.Listener) (cancel func())
}

// Notifications signals finished builds.
type Notifications interface {
	Subscribe(fn func()) (cancel func())
}

func newRefreshEndpoint(r Repositories) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		refreshRequest := request.(*refreshRequest)
		return &refreshResponse{Accepted: r.RequestRefresh(refreshRequest.force)}, nil
	}
}

func newListEndpoint(r Repositories) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		listRequest := request.(*listRequest)
		repos, ok := r.Latest()
		if !ok {
			return nil, errNotLoaded
		}
		return FilterApp(repos, listRequest.filter), nil
	}
}

func newLookupEndpoint(r Repositories) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		appRequest := request.(*appRequest)
		result, ok, err := r.Lookup(ctx, appRequest.app)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NotFoundErr{App: appRequest.app}
		}
		return &result, nil
	}
}

func newStateEndpoint(r Repositories) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		appRequest := request.(*appRequest)
		state, err := r.RepositoryState(ctx, appRequest.app)
		if err != nil {
			return nil, err
		}
		return &state, nil
	}
}

// newBuildEndpoint triggers a pipeline for a cached repository. A successful
// trigger forces a refresh so the new build state is picked up.
func newBuildEndpoint(r Repositories, t apiclient.BuildTrigger, v *validator.Validate) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		build := request.(*buildRequest)
		repo, ok, err := r.Lookup(ctx, build.App)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NotFoundErr{App: build.App}
		}
		if err = validateBuild(v, build.Detail, repo); err != nil {
			return nil, err
		}

		response, err := t.TriggerBuild(ctx, model.BuildRequest{
			Props:  repo.App.Props,
			Config: repo.App.Config,
			Detail: build.Detail,
		})
		if err != nil {
			return nil, err
		}

		sallust.Get(ctx).Info("build triggered", zap.String("app", build.App),
			zap.String("id", response.ID), zap.String("branch", build.Detail.Branch))
		r.RequestRefresh(true)
		return &response, nil
	}
}

// FilterApp keeps the repositories whose name contains filter, ignoring case.
// An empty filter keeps everything.
func FilterApp(repos model.Repositories, filter string) model.Repositories {
	if len(filter) == 0 {
		return repos
	}
	filter = strings.ToLower(filter)
	filtered := model.Repositories{
		Params: repos.Params,
		Repos:  make([]model.RepositoryDetail, 0, len(repos.Repos)),
	}
	for _, r := range repos.Repos {
		if strings.Contains(strings.ToLower(r.Identity()), filter) {
			filtered.Repos = append(filtered.Repos, r)
		}
	}
	return filtered
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/xmidt-org/repodeck/apiclient"
)

type Handler http.Handler

func newRefreshHandler(r Repositories) Handler {
	return kithttp.NewServer(
		newRefreshEndpoint(r),
		decodeRefreshRequest,
		encodeRefreshResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newListHandler(r Repositories, config *transportConfig) Handler {
	return kithttp.NewServer(
		newListEndpoint(r),
		listRequestDecoder(config),
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newLookupHandler(r Repositories, config *transportConfig) Handler {
	return kithttp.NewServer(
		newLookupEndpoint(r),
		appRequestDecoder(config),
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newStateHandler(r Repositories, config *transportConfig) Handler {
	return kithttp.NewServer(
		newStateEndpoint(r),
		appRequestDecoder(config),
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newBuildHandler(r Repositories, t apiclient.BuildTrigger, config *transportConfig) Handler {
	return kithttp.NewServer(
		newBuildEndpoint(r, t, config.Validate),
		buildRequestDecoder(config),
		encodeJSONResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

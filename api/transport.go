// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
	"github.com/xmidt-org/repodeck/apiclient"
	"github.com/xmidt-org/repodeck/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// request URL path keys
const (
	appVarKey = "app"
)

// request URL query keys
const (
	forceQueryKey  = "force"
	filterQueryKey = "filter"
)

const (
	appVarMissingMsg = "{app} URL path parameter missing"
	contentTypeJSON  = "application/json"
)

type refreshRequest struct {
	force bool
}

type refreshResponse struct {
	Accepted bool `json:"accepted"`
}

type listRequest struct {
	filter string
}

type appRequest struct {
	app string
}

type buildRequest struct {
	App    string       `json:"app"`
	Detail model.Detail `json:"detail"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// decodeRefreshRequest reads the optional force flag. A refresh asked for by
// a client bypasses the cache unless force=false is given.
func decodeRefreshRequest(_ context.Context, r *http.Request) (interface{}, error) {
	force := true
	if v := r.URL.Query().Get(forceQueryKey); len(v) > 0 {
		var err error
		if force, err = cast.ToBoolE(v); err != nil {
			return nil, &BadRequestErr{Message: "force must be a boolean"}
		}
	}
	return &refreshRequest{force: force}, nil
}

func listRequestDecoder(config *transportConfig) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		filter := strings.TrimSpace(r.URL.Query().Get(filterQueryKey))
		if len(filter) > config.FilterMaxLength {
			return nil, errFilterTooLong
		}
		return &listRequest{filter: filter}, nil
	}
}

func appRequestDecoder(config *transportConfig) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		app, ok := mux.Vars(r)[appVarKey]
		if !ok {
			return nil, &BadRequestErr{Message: appVarMissingMsg}
		}
		if err := config.validateApp(app); err != nil {
			return nil, err
		}
		return &appRequest{app: app}, nil
	}
}

func buildRequestDecoder(config *transportConfig) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &BadRequestErr{Message: "failed to read body"}
		}

		var request buildRequest
		if err = json.Unmarshal(data, &request); err != nil {
			return nil, &BadRequestErr{Message: "failed to unmarshal json"}
		}
		if err = config.validateApp(request.App); err != nil {
			return nil, err
		}
		return &request, nil
	}
}

func encodeRefreshResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(*refreshResponse)
	if !ok {
		return ErrCasting
	}
	return writeJSON(rw, http.StatusAccepted, r)
}

func encodeJSONResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	return writeJSON(rw, http.StatusOK, response)
}

func writeJSON(rw http.ResponseWriter, code int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rw.Header().Set("Content-Type", contentTypeJSON)
	rw.WriteHeader(code)
	_, err = rw.Write(data)
	return err
}

// encodeError writes err as a {"message": ...} body with the status carried
// by the error.
func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	if headerer, ok := err.(kithttp.Headerer); ok {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}

	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		sallust.Get(ctx).Error("request failed", zap.Int("code", code), zap.Error(err))
	}

	data, _ := json.Marshal(errorResponse{Message: err.Error()})
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	w.Write(data)
}

func statusCode(err error) int {
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apiclient.ErrBadRequest),
		errors.Is(err, apiclient.ErrFailedAuthentication),
		errors.Is(err, apiclient.ErrNonSuccessResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

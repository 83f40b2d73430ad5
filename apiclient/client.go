// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/repodeck/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors returned by the clients. Most are returned wrapped so errors.Is
// should be used to check for them.
var (
	ErrNilMeasures          = errors.New("measures cannot be nil")
	ErrAuthAcquirerFailure  = errors.New("failed acquiring auth token")
	ErrBadRequest           = errors.New("remote API rejected the request as invalid")
	ErrFailedAuthentication = errors.New("failed to authenticate with the remote API")
	ErrNotFound             = errors.New("remote API has no such resource")
	ErrNonSuccessResponse   = errors.New("remote API responded with a non-success status code")
)

var (
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
	errJSONMarshal        = errors.New("failed marshaling JSON request payload")
)

const (
	errWrappedFmt    = "%w: %s"
	errStatusCodeFmt = "%w: received status %v"

	// DefaultFallbackMessage is reported for failed builds whose response
	// carries no message of its own.
	DefaultFallbackMessage = "Sorry, we could not process your request, please try again later"

	defaultTimeout = 30 * time.Second
)

// ReposReader reads the repository listing API.
type ReposReader interface {
	// GetRepositories fetches the full repository collection.
	GetRepositories(ctx context.Context) (model.Repositories, error)

	// GetRepositoryState fetches the live build state of app. It is never cached.
	GetRepositoryState(ctx context.Context, app string) (model.RepositoryState, error)
}

// BuildTrigger starts CI/CD pipelines.
type BuildTrigger interface {
	TriggerBuild(ctx context.Context, request model.BuildRequest) (model.BuildResponse, error)
}

// Config contains config data for the clients of the repository listing and
// build trigger APIs.
type Config struct {
	// ReposURL is the repository listing endpoint (i.e. https://api.example.io/repos).
	ReposURL string `validate:"required,url"`

	// BuildsURL is the build trigger endpoint.
	BuildsURL string `validate:"required,url"`

	// FallbackMessage is reported when a build fails without a server message.
	// (Optional) Defaults to DefaultFallbackMessage.
	FallbackMessage string

	// Timeout bounds every request.
	// (Optional) Defaults to 30 seconds.
	Timeout time.Duration

	// Auth provides the mechanism to add auth headers to outgoing requests.
	// (Optional) If not provided, no auth headers are added.
	Auth Auth `validate:"-"`

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to a client using Timeout.
	HTTPClient *http.Client `mapstructure:"-" validate:"-"`
}

// Auth contains authorization data for requests to the remote APIs.
type Auth struct {
	JWT   acquire.RemoteBearerTokenAcquirerOptions
	Basic string
}

// Client talks to the repository listing and build trigger APIs.
type Client struct {
	client    *http.Client
	auth      acquire.Acquirer
	reposURL  string
	buildsURL string
	fallback  string
	logger    *zap.Logger
	measures  *Measures
}

type response struct {
	Body []byte
	Code int
}

// New creates a Client from config.
func New(config Config, measures *Measures, logger *zap.Logger) (*Client, error) {
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if logger == nil {
		logger = sallust.Default()
	}

	tokenAcquirer, err := buildTokenAcquirer(config.Auth)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    config.HTTPClient,
		auth:      tokenAcquirer,
		reposURL:  config.ReposURL,
		buildsURL: config.BuildsURL,
		fallback:  config.FallbackMessage,
		logger:    logger,
		measures:  measures,
	}, nil
}

// GetRepositories fetches the repository collection.
func (c *Client) GetRepositories(ctx context.Context) (repos model.Repositories, err error) {
	defer func() { c.observe(reposAPI, err) }()
	resp, err := c.sendRequest(ctx, http.MethodGet, c.reposURL, nil)
	if err != nil {
		return repos, err
	}

	if resp.Code != http.StatusOK {
		c.logger.Error("repository API responded with non-200 response for GetRepositories request",
			zap.Int("code", resp.Code))
		return repos, fmt.Errorf(errStatusCodeFmt, translateNonSuccessStatusCode(resp.Code), resp.Code)
	}

	if err = json.Unmarshal(resp.Body, &repos); err != nil {
		return repos, fmt.Errorf("GetRepositories: %w: %s", errJSONUnmarshal, err.Error())
	}
	return repos, nil
}

// GetRepositoryState fetches the live state of a single repository.
func (c *Client) GetRepositoryState(ctx context.Context, app string) (state model.RepositoryState, err error) {
	defer func() { c.observe(stateAPI, err) }()
	resp, err := c.sendRequest(ctx, http.MethodGet, c.reposURL+"/"+url.PathEscape(app), nil)
	if err != nil {
		return state, err
	}

	if resp.Code != http.StatusOK {
		c.logger.Error("repository API responded with non-200 response for GetRepositoryState request",
			zap.Int("code", resp.Code), zap.String("app", app))
		return state, fmt.Errorf(errStatusCodeFmt, translateNonSuccessStatusCode(resp.Code), resp.Code)
	}

	if err = json.Unmarshal(resp.Body, &state); err != nil {
		return state, fmt.Errorf("GetRepositoryState: %w: %s", errJSONUnmarshal, err.Error())
	}
	return state, nil
}

// TriggerBuild starts a pipeline for the request. Every failure is returned
// as a *BuildError.
func (c *Client) TriggerBuild(ctx context.Context, request model.BuildRequest) (result model.BuildResponse, err error) {
	defer func() { c.observe(buildsAPI, err) }()
	data, err := json.Marshal(request)
	if err != nil {
		return result, c.buildError(fmt.Errorf(errWrappedFmt, errJSONMarshal, err.Error()), 0, nil)
	}

	resp, err := c.sendRequest(ctx, http.MethodPost, c.buildsURL, bytes.NewReader(data))
	if err != nil {
		return result, c.buildError(err, 0, nil)
	}

	if resp.Code < 200 || resp.Code > 299 {
		c.logger.Error("build API responded with a non-successful status code for a TriggerBuild request",
			zap.Int("code", resp.Code), zap.String("app", request.Props.App))
		return result, c.buildError(
			fmt.Errorf(errStatusCodeFmt, translateNonSuccessStatusCode(resp.Code), resp.Code),
			resp.Code, resp.Body)
	}

	if err = json.Unmarshal(resp.Body, &result); err != nil {
		return result, c.buildError(fmt.Errorf("TriggerBuild: %w: %s", errJSONUnmarshal, err.Error()), resp.Code, nil)
	}
	return result, nil
}

func (c *Client) buildError(err error, code int, body []byte) *BuildError {
	be := &BuildError{
		Err:     err,
		Code:    code,
		Message: c.fallback,
	}
	var payload struct {
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		be.Message = payload.Message
	}
	return be
}

// observe counts a call once its response has been decoded, so a 2xx with an
// unreadable body is a failure.
func (c *Client) observe(api string, err error) {
	outcome := SuccessOutcome
	if err != nil {
		outcome = FailureOutcome
	}
	c.measures.Requests.With(prometheus.Labels{APILabel: api, OutcomeLabel: outcome}).Inc()
}

func (c *Client) sendRequest(ctx context.Context, method, url string, body io.Reader) (resp response, err error) {
	r, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if err = acquire.AddAuth(r, c.auth); err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, ErrAuthAcquirerFailure, err.Error())
	}
	res, err := c.client.Do(r)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer res.Body.Close()

	resp.Code = res.StatusCode
	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return resp, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}
	resp.Body = bodyBytes
	return resp, nil
}

// translateNonSuccessStatusCode returns a specific error for known status codes.
func translateNonSuccessStatusCode(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrFailedAuthentication
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrNonSuccessResponse
	}
}

func isEmpty(options acquire.RemoteBearerTokenAcquirerOptions) bool {
	return len(options.AuthURL) < 1 || options.Buffer == 0 || options.Timeout == 0
}

func buildTokenAcquirer(auth Auth) (acquire.Acquirer, error) {
	if !isEmpty(auth.JWT) {
		return acquire.NewRemoteBearerTokenAcquirer(auth.JWT)
	} else if len(auth.Basic) > 0 {
		return acquire.NewFixedAuthAcquirer(auth.Basic)
	}
	return &acquire.DefaultAcquirer{}, nil
}

func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	if config.FallbackMessage == "" {
		config.FallbackMessage = DefaultFallbackMessage
	}
	return nil
}

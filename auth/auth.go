// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"errors"
	"fmt"

	"github.com/justinas/alice"
	"github.com/xmidt-org/bascule"
	"github.com/xmidt-org/bascule/basculechecks"
	"github.com/xmidt-org/bascule/basculehttp"
	"github.com/xmidt-org/clortho"
	"go.uber.org/zap"
)

// ServerName labels the auth validation metrics of the primary server.
const ServerName = "primary"

var ErrInvalidBasic = errors.New("invalid basic auth credentials")

// Config lists the credentials accepted on the routes that start builds or
// force refreshes. When neither basic credentials nor a key template are set
// those routes are left open.
type Config struct {
	// Basic holds base64 encoded user:password pairs.
	Basic []string

	Bearer BearerConfig
}

// BearerConfig enables JWT bearer tokens.
type BearerConfig struct {
	// KeyTemplate is the URI template signing keys are fetched from,
	// e.g. https://keys.example.io/keys/{keyID}.
	KeyTemplate string

	// DefaultKeyID is used for tokens without a kid header.
	DefaultKeyID string

	Leeway bascule.Leeway
}

// NewResolver builds the key resolver for bearer tokens. A nil resolver is
// returned when no key template is configured.
func NewResolver(config BearerConfig) (clortho.Resolver, error) {
	if config.KeyTemplate == "" {
		return nil, nil
	}
	return clortho.NewResolver(clortho.WithKeyIDTemplate(config.KeyTemplate))
}

// NewChain builds the constructor, enforcer and metric listener middleware.
// Basic tokens are accepted as is; bearer tokens must be JWTs with a subject
// signed by a key the resolver knows.
func NewChain(config Config, resolver clortho.Resolver, measures *basculehttp.AuthValidationMeasures, logger *zap.Logger) (alice.Chain, error) {
	if len(config.Basic) == 0 && resolver == nil {
		logger.Warn("no inbound credentials configured, build and refresh routes are open")
		return alice.New(), nil
	}

	listener, err := basculehttp.NewMetricListener(measures, basculehttp.WithServer(ServerName))
	if err != nil {
		return alice.Chain{}, err
	}

	copts := []basculehttp.COption{
		basculehttp.WithCErrorResponseFunc(listener.OnErrorResponse),
	}
	eopts := []basculehttp.EOption{
		basculehttp.WithEErrorResponseFunc(listener.OnErrorResponse),
	}

	if len(config.Basic) > 0 {
		tf, err := basculehttp.NewBasicTokenFactoryFromList(config.Basic)
		if err != nil {
			return alice.Chain{}, fmt.Errorf("%w: %v", ErrInvalidBasic, err)
		}
		copts = append(copts, basculehttp.WithTokenFactory(basculehttp.BasicAuthorization, tf))
		eopts = append(eopts, basculehttp.WithRules(basculehttp.BasicAuthorization, basculechecks.AllowAll()))
	}

	if resolver != nil {
		copts = append(copts, basculehttp.WithTokenFactory(basculehttp.BearerAuthorization, basculehttp.BearerTokenFactory{
			DefaultKeyID: config.Bearer.DefaultKeyID,
			Resolver:     resolver,
			Parser:       bascule.DefaultJWTParser,
			Leeway:       config.Bearer.Leeway,
		}))
		eopts = append(eopts, basculehttp.WithRules(basculehttp.BearerAuthorization, bascule.Validators{
			basculechecks.NonEmptyPrincipal(),
			basculechecks.ValidType([]string{"jwt"}),
		}))
	}

	logger.Info("inbound auth enabled",
		zap.Int("basicCredentials", len(config.Basic)), zap.Bool("bearer", resolver != nil))

	return alice.New(
		basculehttp.NewConstructor(copts...),
		basculehttp.NewEnforcer(eopts...),
		basculehttp.NewListenerDecorator(listener),
	), nil
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"errors"
	"net/http"
)

// BuildError is a failed build trigger. Message is the text meant for the
// user: the server's own message when it sent one, the configured fallback
// otherwise.
type BuildError struct {
	Message string

	// Code is the status returned by the build API, zero when no response
	// was received.
	Code int
	Err  error
}

func (e *BuildError) Error() string {
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// StatusCode is the status reported to callers of this service.
func (e *BuildError) StatusCode() int {
	switch {
	case errors.Is(e.Err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(e.Err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

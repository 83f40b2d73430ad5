// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xmidt-org/httpaux/erraux"
)

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

var errNotLoaded = &erraux.Error{
	Err:  errors.New("repositories have not been loaded yet"),
	Code: http.StatusNotFound,
}

// BadRequestErr is used to relay any useful information for a user input
// that was rejected.
type BadRequestErr struct {
	Message string
}

func (bre BadRequestErr) Error() string {
	return bre.Message
}

func (bre BadRequestErr) StatusCode() int {
	return http.StatusBadRequest
}

// NotFoundErr is returned when the requested repository is not cached.
type NotFoundErr struct {
	App string
}

func (nfe NotFoundErr) Error() string {
	return fmt.Sprintf("repository %q not found", nfe.App)
}

func (nfe NotFoundErr) StatusCode() int {
	return http.StatusNotFound
}

var errStreamingUnsupported = &erraux.Error{
	Err:  errors.New("streaming is not supported by this connection"),
	Code: http.StatusInternalServerError,
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyKey is returned when an operation is attempted with an empty key.
	ErrEmptyKey = errors.New("key is required")

	// ErrStoreUnavailable means the underlying storage could not be opened.
	ErrStoreUnavailable = errors.New("store could not be initialized")
)

// OperationError records the store operation and key that failed.
type OperationError struct {
	Err       error
	Key       string
	Operation string
}

func (e OperationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Operation, e.Key, e.Err)
}

func (e OperationError) Unwrap() error {
	return e.Err
}

// StatusCode lets store failures surface as server errors through HTTP
// error encoders.
func (e OperationError) StatusCode() int {
	return http.StatusInternalServerError
}

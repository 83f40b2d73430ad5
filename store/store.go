// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
)

const (
	// TypeLabel is for labeling metrics; if there is a single metric for
	// successful queries, the typeLabel and corresponding type can be used
	// when incrementing the metric.
	TypeLabel  = "type"
	InsertType = "insert"
	DeleteType = "delete"
	ReadType   = "read"
	ClearType  = "clear"
)

// S is the persistent key-value store backing the repository cache.
// Implementations must make a single Set atomic from the perspective of
// concurrent Get calls.
type S interface {
	// Get returns the value stored under key. A missing key is reported
	// through ok, never through err.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the value under key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every key of the store.
	Clear(ctx context.Context) error
}

// Nop is the store used when no durable storage is available. Reads always
// miss and writes are acknowledged without effect.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte) error { return nil }

func (Nop) Remove(context.Context, string) error { return nil }

func (Nop) Clear(context.Context) error { return nil }

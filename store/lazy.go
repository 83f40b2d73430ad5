// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"sync"
)

// OpenFunc opens the underlying storage of a backend.
type OpenFunc func(ctx context.Context) (S, error)

// Lazy defers opening a backend until its first operation. Every caller,
// concurrent or later, observes the same opened store or the same error.
type Lazy struct {
	open OpenFunc
	once sync.Once
	s    S
	err  error
}

// NewLazy returns a store that calls open exactly once, on first use.
func NewLazy(open OpenFunc) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) get(ctx context.Context) (S, error) {
	l.once.Do(func() {
		// the handle outlives the first caller so its cancellation must not
		// abort the shared initialization.
		l.s, l.err = l.open(context.WithoutCancel(ctx))
		if l.err != nil {
			l.err = fmt.Errorf("%w: %v", ErrStoreUnavailable, l.err)
		}
	})
	return l.s, l.err
}

func (l *Lazy) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, false, OperationError{Err: err, Key: key, Operation: "get"}
	}
	return s.Get(ctx, key)
}

func (l *Lazy) Set(ctx context.Context, key string, value []byte) error {
	s, err := l.get(ctx)
	if err != nil {
		return OperationError{Err: err, Key: key, Operation: "set"}
	}
	return s.Set(ctx, key, value)
}

func (l *Lazy) Remove(ctx context.Context, key string) error {
	s, err := l.get(ctx)
	if err != nil {
		return OperationError{Err: err, Key: key, Operation: "remove"}
	}
	return s.Remove(ctx, key)
}

func (l *Lazy) Clear(ctx context.Context) error {
	s, err := l.get(ctx)
	if err != nil {
		return OperationError{Err: err, Operation: "clear"}
	}
	return s.Clear(ctx)
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"bytes"
	"context"
	"sync"

	"github.com/xmidt-org/repodeck/store"
)

type InMem struct {
	data map[string][]byte
	lock sync.RWMutex
}

func NewInMem() *InMem {
	return &InMem{
		data: map[string][]byte{},
	}
}

func (i *InMem) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, store.OperationError{Err: store.ErrEmptyKey, Operation: "get"}
	}
	i.lock.RLock()
	defer i.lock.RUnlock()
	value, ok := i.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

// Set swaps the whole value under the write lock so readers never observe a
// partially written value.
func (i *InMem) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return store.OperationError{Err: store.ErrEmptyKey, Operation: "set"}
	}
	storing := bytes.Clone(value)
	i.lock.Lock()
	defer i.lock.Unlock()
	i.data[key] = storing
	return nil
}

func (i *InMem) Remove(_ context.Context, key string) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	delete(i.data, key)
	return nil
}

func (i *InMem) Clear(context.Context) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.data = map[string][]byte{}
	return nil
}

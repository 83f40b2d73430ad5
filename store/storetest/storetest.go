// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package storetest holds the behaviour every store.S backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/repodeck/store"
)

const (
	GenericKey   = "repos"
	GenericOther = "other"
)

var GenericValue = []byte(`{"value":{"params":{"accounts":["123"],"regions":["us-east-1"]},"repos":[]},"timestamp":1700000000000,"ttl":86400000}`)

// StoreTest runs the round trip checks shared by every backend.
func StoreTest(t *testing.T, s store.S) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	t.Log("Missing key")
	value, ok, err := s.Get(ctx, GenericKey)
	require.NoError(err)
	assert.False(ok)
	assert.Nil(value)

	t.Log("Round trip")
	require.NoError(s.Set(ctx, GenericKey, GenericValue))
	value, ok, err = s.Get(ctx, GenericKey)
	require.NoError(err)
	assert.True(ok)
	assert.Equal(GenericValue, value)

	t.Log("Overwrite")
	require.NoError(s.Set(ctx, GenericKey, []byte(`{}`)))
	value, ok, err = s.Get(ctx, GenericKey)
	require.NoError(err)
	assert.True(ok)
	assert.Equal([]byte(`{}`), value)

	t.Log("Remove")
	require.NoError(s.Remove(ctx, GenericKey))
	_, ok, err = s.Get(ctx, GenericKey)
	require.NoError(err)
	assert.False(ok)
	assert.NoError(s.Remove(ctx, GenericKey))

	t.Log("Clear")
	require.NoError(s.Set(ctx, GenericKey, GenericValue))
	require.NoError(s.Set(ctx, GenericOther, GenericValue))
	require.NoError(s.Clear(ctx))
	_, ok, err = s.Get(ctx, GenericKey)
	require.NoError(err)
	assert.False(ok)
	_, ok, err = s.Get(ctx, GenericOther)
	require.NoError(err)
	assert.False(ok)
}

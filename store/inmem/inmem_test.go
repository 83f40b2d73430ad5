// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/storetest"
)

type InMemTestSuite struct {
	suite.Suite
	Key   string
	Value []byte
}

func (s *InMemTestSuite) SetupSuite() {
	s.Key = "repos"
	s.Value = []byte(`{"value":{"repos":[]},"timestamp":1,"ttl":2}`)
}

func (s *InMemTestSuite) TestGet() {
	tcs := []struct {
		Description   string
		OriginalState map[string][]byte
		Key           string
		ExpectedOK    bool
		ExpectedValue []byte
		ExpectedError error
	}{
		{
			Description:   "Item missing",
			OriginalState: map[string][]byte{"other": s.Value},
			Key:           s.Key,
		},
		{
			Description:   "Item found",
			OriginalState: map[string][]byte{s.Key: s.Value},
			Key:           s.Key,
			ExpectedOK:    true,
			ExpectedValue: s.Value,
		},
		{
			Description:   "Empty key",
			OriginalState: map[string][]byte{},
			ExpectedError: store.ErrEmptyKey,
		},
	}

	for _, tc := range tcs {
		s.T().Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			storage := InMem{data: tc.OriginalState}
			value, ok, err := storage.Get(context.Background(), tc.Key)
			if tc.ExpectedError != nil {
				var opErr store.OperationError
				require.True(t, errors.As(err, &opErr))
				assert.Equal("get", opErr.Operation)
				assert.ErrorIs(err, tc.ExpectedError)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.ExpectedOK, ok)
			assert.Equal(tc.ExpectedValue, value)
		})
	}
}

func (s *InMemTestSuite) TestSetCopiesValue() {
	assert := assert.New(s.T())
	storage := NewInMem()
	value := bytes.Clone(s.Value)
	assert.NoError(storage.Set(context.Background(), s.Key, value))

	value[0] = 'X'
	stored, ok, err := storage.Get(context.Background(), s.Key)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(s.Value, stored)

	stored[0] = 'Y'
	again, _, _ := storage.Get(context.Background(), s.Key)
	assert.Equal(s.Value, again)
}

func (s *InMemTestSuite) TestSetEmptyKey() {
	storage := NewInMem()
	assert.ErrorIs(s.T(), storage.Set(context.Background(), "", s.Value), store.ErrEmptyKey)
}

func (s *InMemTestSuite) TestRoundTrip() {
	storetest.StoreTest(s.T(), NewInMem())
}

func TestInMem(t *testing.T) {
	suite.Run(t, new(InMemTestSuite))
}

func TestInMemConcurrent(t *testing.T) {
	storage := NewInMem()
	first := bytes.Repeat([]byte("a"), 4096)
	second := bytes.Repeat([]byte("b"), 4096)
	for i := 0; i < 30; i++ {
		t.Run(fmt.Sprintf("%v", i), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			value := first
			if i%2 == 0 {
				value = second
			}
			assert.NoError(t, storage.Set(ctx, "repos", value))
			got, ok, err := storage.Get(ctx, "repos")
			assert.NoError(t, err)
			if ok {
				assert.True(t, bytes.Equal(got, first) || bytes.Equal(got, second), "torn read")
			}
			storage.Remove(ctx, "repos")
			storage.Clear(ctx)
		})
	}
}

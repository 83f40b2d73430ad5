// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the timestamped envelope stored for cached values
// along with its freshness rule.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xmidt-org/repodeck/store"
)

const (
	// ReposKey is the store key holding the repository collection.
	ReposKey = "repos"

	// ReposTTL is how long a fetched repository collection is fresh.
	ReposTTL = 24 * time.Hour
)

var (
	// ErrDecodeEntry is returned by Load when the stored bytes are not an
	// entry of the requested type. Callers treat such an entry as missing.
	ErrDecodeEntry = errors.New("failed decoding cache entry")

	errEncodeEntry = errors.New("failed encoding cache entry")
)

// Entry is a cached value stamped with its write time and lifetime, both in
// milliseconds. Entries are never mutated; a refresh writes a new one.
type Entry[T any] struct {
	Value     T     `json:"value"`
	Timestamp int64 `json:"timestamp"`
	TTL       int64 `json:"ttl"`
}

// New stamps value with now and ttl.
func New[T any](value T, now time.Time, ttl time.Duration) Entry[T] {
	return Entry[T]{
		Value:     value,
		Timestamp: now.UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}
}

// Valid reports whether the entry is still fresh at now. The boundary is
// exclusive: an entry exactly ttl old is stale.
func (e Entry[T]) Valid(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp < e.TTL
}

// Age is how long ago the entry was written.
func (e Entry[T]) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// Load reads and decodes the entry stored under key. A missing key is
// reported through ok, an undecodable one through ErrDecodeEntry.
func Load[T any](ctx context.Context, s store.S, key string) (entry Entry[T], ok bool, err error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return entry, false, err
	}
	if err = json.Unmarshal(data, &entry); err != nil {
		return entry, false, fmt.Errorf("%w: %v", ErrDecodeEntry, err)
	}
	return entry, true, nil
}

// Save encodes entry and writes it under key.
func Save[T any](ctx context.Context, s store.S, key string, entry Entry[T]) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", errEncodeEntry, err)
	}
	return s.Set(ctx, key, data)
}

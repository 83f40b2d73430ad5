// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
)

type dbStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Set(ctx context.Context, bucket, key string, value []byte) error
	Remove(ctx context.Context, bucket, key string) error
	Clear(ctx context.Context, bucket string) error
	Close()
	Ping() error
}

var (
	noDataResponse = errors.New("no data from query")
	serverClosed   = errors.New("server is closed")
)

type cassandraExecutor struct {
	session *gocql.Session
	table   string
}

func connect(clusterConfig *gocql.ClusterConfig, table string) (dbStore, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{session: session, table: table}, nil
}

func createTable(session *gocql.Session, table string) error {
	return session.Query(fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (bucket text, id text, data blob, PRIMARY KEY (bucket, id))", table,
	)).Exec()
}

func (s *cassandraExecutor) Set(ctx context.Context, bucket, key string, value []byte) error {
	return s.session.Query(fmt.Sprintf("INSERT INTO %s (bucket, id, data) VALUES (?,?,?)", s.table),
		bucket, key, value).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var data []byte
	err := s.session.Query(fmt.Sprintf("SELECT data FROM %s WHERE bucket = ? AND id = ?", s.table),
		bucket, key).WithContext(ctx).Scan(&data)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, noDataResponse
	}
	return data, err
}

func (s *cassandraExecutor) Remove(ctx context.Context, bucket, key string) error {
	return s.session.Query(fmt.Sprintf("DELETE FROM %s WHERE bucket = ? AND id = ?", s.table),
		bucket, key).WithContext(ctx).Exec()
}

// Clear drops the whole bucket partition in a single statement.
func (s *cassandraExecutor) Clear(ctx context.Context, bucket string) error {
	return s.session.Query(fmt.Sprintf("DELETE FROM %s WHERE bucket = ?", s.table),
		bucket).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return serverClosed
	}
	return nil
}

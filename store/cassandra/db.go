// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"
	"sync"
	"time"

	emperrors "emperror.dev/errors"
	"github.com/gocql/gocql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/db/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	Yugabyte = "yugabyte"

	PingType = "ping"

	defaultOpTimeout    = time.Duration(10) * time.Second
	defaultDatabase     = "repodeck"
	defaultTable        = "cache"
	defaultBucket       = "cache"
	defaultNumRetries   = 0
	defaultWaitTimeMult = 1
	defaultPingInterval = 5 * time.Second
)

// ErrNoHosts is returned when the configuration lists no hosts.
const ErrNoHosts = emperrors.Sentinel("number of hosts must be > 0")

type Config struct {
	// Hosts to  connect to. Must have at least one
	Hosts []string

	// Database aka Keyspace for cassandra
	Database string

	// Table holding the cache rows.
	// (Optional) Defaults to "cache".
	Table string

	// Bucket is the partition used for every cache key.
	// (Optional) Defaults to "cache".
	Bucket string

	// CreateTable creates the table on first use when it does not exist yet.
	CreateTable bool

	// OpTimeout
	OpTimeout time.Duration

	// SSLRootCert used for enabling tls to the cluster. SSLKey, and SSLCert must also be set.
	SSLRootCert string
	// SSLKey used for enabling tls to the cluster. SSLRootCert, and SSLCert must also be set.
	SSLKey string
	// SSLCert used for enabling tls to the cluster. SSLRootCert, and SSLRootCert must also be set.
	SSLCert string
	// If you want to verify the hostname and server cert (like a wildcard for cass cluster) then you should turn this on
	// This option is basically the inverse of InSecureSkipVerify
	// See InSecureSkipVerify in http://golang.org/pkg/crypto/tls/ for more info
	EnableHostVerification bool

	// Username to authenticate into the cluster. Password must also be provided.
	Username string
	// Password to authenticate into the cluster. Username must also be provided.
	Password string

	// NumRetries for connecting to the db
	NumRetries int

	// WaitTimeMult the amount of time to wait before retrying to connect to the db
	WaitTimeMult time.Duration

	// PingInterval is how often an opened session is checked.
	PingInterval time.Duration
}

// CassandraClient adapts a cassandra session to store.S.
type CassandraClient struct {
	client   dbStore
	bucket   string
	logger   *zap.Logger
	measures metric.Measures
}

// NewCassandra returns a store backed by cassandra/yugabyte. The session is
// created on the first store operation and closed when the application stops.
func NewCassandra(config Config, measures metric.Measures, lc fx.Lifecycle, logger *zap.Logger) (store.S, error) {
	if len(config.Hosts) == 0 {
		return nil, ErrNoHosts
	}
	validateConfig(&config)

	var (
		lock     sync.Mutex
		opened   *CassandraClient
		stopPing func()
	)
	lazy := store.NewLazy(func(context.Context) (store.S, error) {
		client, err := CreateCassandraClient(config, measures, logger)
		if err != nil {
			return nil, err
		}
		lock.Lock()
		defer lock.Unlock()
		opened = client
		stopPing = doEvery(config.PingInterval, func(_ time.Time) {
			if err := client.Ping(); err != nil {
				logger.Error("ping failed", zap.Error(err))
			}
		})
		return client, nil
	})

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			lock.Lock()
			defer lock.Unlock()
			if stopPing != nil {
				stopPing()
			}
			if opened != nil {
				opened.Close()
			}
			return nil
		},
	})
	return lazy, nil
}

// doEvery calls f every d until stop is called. stop returns once the loop
// has exited and may be called more than once.
func doEvery(d time.Duration, f func(time.Time)) (stop func()) {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case x := <-ticker.C:
				f(x)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
			<-exited
		})
	}
}

func CreateCassandraClient(config Config, measures metric.Measures, logger *zap.Logger) (*CassandraClient, error) {
	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	// let retry package handle it
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	// setup ssl
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	// setup authentication
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	session, err := connect(clusterConfig, config.Table)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		session, err = connect(clusterConfig, config.Table)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperrors.WrapIfWithDetails(err, "Connecting to database failed", "hosts", config.Hosts)
	}

	if config.CreateTable {
		executor := session.(*cassandraExecutor)
		if err := createTable(executor.session, config.Table); err != nil {
			session.Close()
			return nil, emperrors.WrapIfWithDetails(err, "Creating table failed", "table", config.Table)
		}
	}

	return &CassandraClient{
		client:   session,
		bucket:   config.Bucket,
		logger:   logger,
		measures: measures,
	}, nil
}

func (s *CassandraClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.bucket, key)
	if errors.Is(err, noDataResponse) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.OperationError{Err: err, Key: key, Operation: "get"}
	}
	return value, true, nil
}

func (s *CassandraClient) Set(ctx context.Context, key string, value []byte) error {
	err := s.client.Set(ctx, s.bucket, key, value)
	if err != nil {
		return store.OperationError{Err: err, Key: key, Operation: "set"}
	}
	return nil
}

func (s *CassandraClient) Remove(ctx context.Context, key string) error {
	err := s.client.Remove(ctx, s.bucket, key)
	if err != nil {
		return store.OperationError{Err: err, Key: key, Operation: "remove"}
	}
	return nil
}

func (s *CassandraClient) Clear(ctx context.Context) error {
	err := s.client.Clear(ctx, s.bucket)
	if err != nil {
		return store.OperationError{Err: err, Operation: "clear"}
	}
	return nil
}

func (s *CassandraClient) Close() {
	s.client.Close()
}

// Ping is for pinging the database to verify that the connection is still good.
func (s *CassandraClient) Ping() error {
	labels := prometheus.Labels{store.TypeLabel: PingType}
	err := s.client.Ping()
	if err != nil {
		s.measures.QueryFailure.With(labels).Inc()
		return emperrors.WrapIf(err, "Pinging connection failed")
	}
	s.measures.QuerySuccess.With(labels).Inc()
	return nil
}

func validateConfig(config *Config) {
	zeroDuration := time.Duration(0) * time.Second

	if config.OpTimeout == zeroDuration {
		config.OpTimeout = defaultOpTimeout
	}

	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.Bucket == "" {
		config.Bucket = defaultBucket
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
}

// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/repodeck/store"
	"github.com/xmidt-org/repodeck/store/db/metric"
	"go.uber.org/zap"
)

const (
	defaultTable        = "repodeck"
	defaultBucket       = "cache"
	defaultMaxRetries   = 3
	defaultCreateWait   = 2 * time.Minute
	tableCreationAction = "create_table"
)

// ErrInvalidConfig is returned when the dynamodb configuration is incomplete.
var ErrInvalidConfig = errors.New("invalid dynamodb configuration")

// Config is the dynamodb backend configuration.
type Config struct {
	// Table is the name of the dynamodb table.
	// (Optional) Defaults to "repodeck".
	Table string

	// Bucket is the partition key value used for every cache key.
	// (Optional) Defaults to "cache".
	Bucket string

	// Endpoint overrides the AWS resolved endpoint, e.g. for dynamodb-local.
	Endpoint string

	Region     string `validate:"required"`
	MaxRetries int
	AccessKey  string
	SecretKey  string

	// CreateTable creates the table on first use when it does not exist yet.
	CreateTable bool
}

// dao adapts the dynamodb service to store.S and records consumed capacity.
type dao struct {
	s        service
	measures metric.Measures
	logger   *zap.Logger
}

// NewDynamoDB returns a store backed by dynamodb. The configuration is
// validated right away; the AWS client is only created, and the table
// checked, on the first store operation.
func NewDynamoDB(config Config, measures metric.Measures, logger *zap.Logger) (store.S, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	config = applyDefaults(config)
	return store.NewLazy(func(ctx context.Context) (store.S, error) {
		c, err := newClient(ctx, config)
		if err != nil {
			return nil, err
		}
		err = ensureTable(ctx, c, config, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("dynamodb store ready", zap.String("table", config.Table), zap.String("bucket", config.Bucket))
		return &dao{
			s: &executor{
				c:         c,
				tableName: config.Table,
				bucket:    config.Bucket,
			},
			measures: measures,
			logger:   logger,
		}, nil
	}), nil
}

func (d *dao) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, cc, err := d.s.Get(ctx, key)
	d.record(store.ReadType, cc)
	if err != nil {
		return nil, false, store.OperationError{Err: err, Key: key, Operation: "get"}
	}
	return value, ok, nil
}

func (d *dao) Set(ctx context.Context, key string, value []byte) error {
	cc, err := d.s.Set(ctx, key, value)
	d.record(store.InsertType, cc)
	if err != nil {
		return store.OperationError{Err: err, Key: key, Operation: "set"}
	}
	return nil
}

func (d *dao) Remove(ctx context.Context, key string) error {
	cc, err := d.s.Remove(ctx, key)
	d.record(store.DeleteType, cc)
	if err != nil {
		return store.OperationError{Err: err, Key: key, Operation: "remove"}
	}
	return nil
}

func (d *dao) Clear(ctx context.Context) error {
	cc, err := d.s.Clear(ctx)
	d.record(store.ClearType, cc)
	if err != nil {
		return store.OperationError{Err: err, Operation: "clear"}
	}
	return nil
}

func (d *dao) record(action string, cc *types.ConsumedCapacity) {
	if cc == nil {
		return
	}
	d.logger.Debug("Updating consumed capacity", zap.String(store.TypeLabel, action))
	labels := prometheus.Labels{store.TypeLabel: action}
	if cc.CapacityUnits != nil {
		d.measures.CapacityUnitConsumedCount.With(labels).Add(*cc.CapacityUnits)
	}
	if cc.ReadCapacityUnits != nil {
		d.measures.ReadCapacityUnitConsumedCount.With(labels).Add(*cc.ReadCapacityUnits)
	}
	if cc.WriteCapacityUnits != nil {
		d.measures.WriteCapacityUnitConsumedCount.With(labels).Add(*cc.WriteCapacityUnits)
	}
}

func applyDefaults(config Config) Config {
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.Bucket == "" {
		config.Bucket = defaultBucket
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
	return config
}

func newClient(ctx context.Context, config Config) (*dynamodb.Client, error) {
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
		awsconfig.WithRetryMaxAttempts(config.MaxRetries),
	}
	if config.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		))
	}
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	}), nil
}

func ensureTable(ctx context.Context, c *dynamodb.Client, config Config, logger *zap.Logger) error {
	_, err := c.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(config.Table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) || !config.CreateTable {
		return fmt.Errorf("failed to describe table %s: %w", config.Table, err)
	}

	logger.Info("creating dynamodb table", zap.String("table", config.Table), zap.String("action", tableCreationAction))
	_, err = c.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(config.Table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(bucketAttributeKey), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(idAttributeKey), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(bucketAttributeKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(idAttributeKey), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", config.Table, err)
	}
	return dynamodb.NewTableExistsWaiter(c).Wait(ctx,
		&dynamodb.DescribeTableInput{TableName: aws.String(config.Table)}, defaultCreateWait)
}

package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"

	"personal-website/internal/config"
	"personal-website/pkg/logger"
)

// New は設定に従って記事テーブルを生成する
func New(ctx context.Context, cfg *config.Config) (Table, error) {
	logger.Info("initializing post table", "backend", cfg.StoreBackend, "environment", cfg.Environment)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryTable(), nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("could not connect to redis (%s): %w", cfg.RedisAddr, err)
		}
		return NewRedisTable(client), nil

	case config.BackendDynamoDB, config.BackendS3:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.StoreBackend == config.BackendS3 {
			return NewS3Table(awsCfg, cfg.PostsBucket, cfg.PostsPrefix, s3Options(cfg)...), nil
		}
		return NewDynamoTable(awsCfg, cfg.TableName, dynamoOptions(cfg)...), nil

	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.StoreBackend)
	}
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// LocalStack などのエンドポイント上書き
func dynamoOptions(cfg *config.Config) []func(*dynamodb.Options) {
	if cfg.AWSEndpoint == "" {
		return nil
	}
	return []func(*dynamodb.Options){
		func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		},
	}
}

func s3Options(cfg *config.Config) []func(*s3.Options) {
	if cfg.AWSEndpoint == "" {
		return nil
	}
	return []func(*s3.Options){
		func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			o.UsePathStyle = true
		},
	}
}

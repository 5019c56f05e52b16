package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

const (
	EnvPrefix        = "BLOG"
	DefaultTableName = "BlogPosts"
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var validate = validator.New()

// Config は Lambda・開発サーバー共通の設定
type Config struct {
	Environment       string `mapstructure:"environment"`
	StoreBackend      string `mapstructure:"store_backend" validate:"oneof=dynamodb s3 redis memory"`
	TableName         string `mapstructure:"table_name"`
	PostsBucket       string `mapstructure:"posts_bucket"`
	PostsPrefix       string `mapstructure:"posts_prefix"`
	RedisAddr         string `mapstructure:"redis_addr"`
	ListLimit         int    `mapstructure:"list_limit" validate:"min=1,max=1000"`
	LogLevel          string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	AWSEndpoint       string `mapstructure:"aws_endpoint" validate:"omitempty,url"`
	AWSRegion         string `mapstructure:"aws_region"`
	SentryDSN         string `mapstructure:"sentry_dsn" validate:"omitempty,url"`
	SentryEnvironment string `mapstructure:"sentry_environment"`
}

// Default はコード上のデフォルト値
func Default() *Config {
	return &Config{
		Environment:  "development",
		StoreBackend: BackendDynamoDB,
		TableName:    DefaultTableName,
		PostsPrefix:  "posts/",
		ListLimit:    DefaultListLimit,
		LogLevel:     "info",
	}
}

// Load は環境変数 (BLOG_*) から設定を読み込み検証する
// 環境変数 > デフォルト
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate は値の検証を行い、全てのエラーをまとめて返す
func (c *Config) Validate() error {
	var errs error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config validation failed: %w", err)
		}
		for _, fe := range verrs {
			errs = multierror.Append(errs, fmt.Errorf("%s failed validation %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}

	switch c.StoreBackend {
	case BackendDynamoDB:
		if c.TableName == "" {
			errs = multierror.Append(errs, errors.New("table name is required for the dynamodb backend"))
		}
	case BackendS3:
		if c.PostsBucket == "" {
			errs = multierror.Append(errs, errors.New("posts bucket is required for the s3 backend"))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = multierror.Append(errs, errors.New("redis address is required for the redis backend"))
		}
	}

	return errs
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	d := Default()
	defaults := map[string]any{
		"environment":        d.Environment,
		"store_backend":      d.StoreBackend,
		"table_name":         d.TableName,
		"posts_bucket":       d.PostsBucket,
		"posts_prefix":       d.PostsPrefix,
		"redis_addr":         d.RedisAddr,
		"list_limit":         d.ListLimit,
		"log_level":          d.LogLevel,
		"aws_endpoint":       d.AWSEndpoint,
		"aws_region":         d.AWSRegion,
		"sentry_dsn":         d.SentryDSN,
		"sentry_environment": d.SentryEnvironment,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
		// BLOG_<KEY>
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}
	return v, nil
}

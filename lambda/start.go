// Package lambda は読み取り・書き込み関数に共通の起動処理をまとめる。
package lambda

import (
	"context"
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"personal-website/internal/config"
	"personal-website/internal/handler"
	"personal-website/internal/repository"
	"personal-website/internal/telemetry"
	"personal-website/pkg/logger"
)

// Deps は関数の組み立てに必要なもの
type Deps struct {
	Config *config.Config
	Table  repository.Table
}

// Start は設定とテーブルを用意し、build が返すハンドラで Lambda を起動する
func Start(build func(Deps) handler.Func) {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	if err := telemetry.SetupErrorReporting(cfg.SentryDSN, sentryEnvironment(cfg)); err != nil {
		logger.Warn("error reporting disabled", "error", err)
	}

	table, err := repository.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize post table", "error", err)
		os.Exit(1)
	}

	h := handler.WithLogging(build(Deps{Config: cfg, Table: table}))
	awslambda.StartWithOptions(h,
		awslambda.WithContext(ctx),
		awslambda.WithEnableSIGTERM(telemetry.Flush),
	)
}

func sentryEnvironment(cfg *config.Config) string {
	if cfg.SentryEnvironment != "" {
		return cfg.SentryEnvironment
	}
	return fmt.Sprintf("blog-%s", cfg.Environment)
}

// Package handler は記事 API の Lambda ハンドラ (読み取り・書き込み) を提供する。
package handler

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"personal-website/internal/apperr"
	"personal-website/internal/response"
	"personal-website/internal/telemetry"
	"personal-website/pkg/logger"
)

// Func は API Gateway プロキシ統合のハンドラ
type Func func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// fail はエラーを記録してレスポンスに変換する
// ストレージ系のエラーのみログ・Sentry に送る
func fail(ctx context.Context, op string, err error) events.APIGatewayProxyResponse {
	kind := apperr.KindOf(err)
	if kind == apperr.KindStorage {
		logger.FromContext(ctx).Error("request failed", "op", op, "error", err)
		telemetry.ReportError(err)
	} else {
		logger.FromContext(ctx).Debug("request rejected", "op", op, "kind", kind.String(), "error", err)
	}
	return response.FromError(err)
}

// WithLogging はリクエストIDをロガーに付け、処理結果を1行ログに出す
func WithLogging(next Func) Func {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		start := time.Now()
		ctx = logger.WithRequest(ctx, req.RequestContext.RequestID)

		res, err := next(ctx, req)

		logger.FromContext(ctx).Info("handled request",
			"method", req.HTTPMethod,
			"path", req.Path,
			"status", res.StatusCode,
			"duration", time.Since(start).String(),
		)
		return res, err
	}
}

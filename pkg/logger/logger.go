package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	Logger *slog.Logger
	level  = new(slog.LevelVar)
)

type ctxKey struct{}

func init() {
	level.Set(slog.LevelInfo)
	Logger = New(os.Stdout)
}

// New は JSON 形式のロガーを生成 (レベルはパッケージ共通)
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// SetOutput は出力先を差し替える (テスト用)
func SetOutput(w io.Writer) {
	Logger = New(w)
}

// SetLevel はログレベルを文字列で設定
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// WithRequest はリクエストIDを付けたロガーを context に入れる
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Logger.With("requestId", requestID))
}

// FromContext は context のロガーを返す。なければ共通ロガー
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return Logger
}

// 情報ログ
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// 警告ログ
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// エラーログ
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// デバッグログ
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

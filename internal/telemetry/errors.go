package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupErrorReporting は Sentry を初期化する。DSN が空なら何もしない
func SetupErrorReporting(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Transport:   sentry.NewHTTPSyncTransport(),
	})
	if err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	return nil
}

// ReportError はエラーを Sentry に送る (未初期化なら送信されない)
func ReportError(err error) {
	sentry.CaptureException(err)
}

// Flush は送信待ちのイベントを送り切る
func Flush() {
	sentry.Flush(2 * time.Second)
}

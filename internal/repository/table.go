package repository

import (
	"context"
	"errors"

	"personal-website/internal/model"
)

// ErrNotFound は記事が存在しない場合のエラー
var ErrNotFound = errors.New("post not found")

// ErrNoScanResult はスキャン結果が得られなかった場合のエラー
var ErrNoScanResult = errors.New("scan returned no result set")

// Table は記事テーブルへのアクセス
type Table interface {
	// Get は postId で1件取得する。存在しなければ ErrNotFound
	Get(ctx context.Context, postID string) (model.Post, error)
	// Put はレコードで記事を丸ごと置き換える
	Put(ctx context.Context, rec model.Record) error
	// Scan は最大 limit 件の記事を返す
	Scan(ctx context.Context, limit int) ([]model.Post, error)
}

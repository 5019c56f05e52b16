package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"personal-website/internal/apperr"
	"personal-website/internal/model"
	"personal-website/internal/repository"
	"personal-website/internal/response"
)

const (
	msgPostCreated = "Post created"
	msgPostUpdated = "Post updated"
)

// Write は記事の作成・更新を受け付ける
// 既存記事の有無は確認せず、常に全置換で書き込む
type Write struct {
	table repository.Table
	now   func() time.Time
}

// WriteOption は Write の設定
type WriteOption func(*Write)

// WithClock は現在時刻の取得関数を差し替える (テスト用)
func WithClock(now func() time.Time) WriteOption {
	return func(w *Write) {
		w.now = now
	}
}

func NewWrite(table repository.Table, opts ...WriteOption) *Write {
	w := &Write{table: table, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (h *Write) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body, err := requestBody(req)
	if err != nil {
		return fail(ctx, "write", err), nil
	}

	postReq, err := decodePostRequest(body)
	if err != nil {
		return fail(ctx, "write", err), nil
	}

	rec := model.NewRecord(postReq, h.now())
	if err := h.table.Put(ctx, rec); err != nil {
		return fail(ctx, "write", apperr.Storage("", err)), nil
	}

	switch r := rec.(type) {
	case model.CreateRecord:
		return response.Created(msgPostCreated, postsPrefix+url.PathEscape(r.PostID)), nil
	default:
		return response.Message(http.StatusOK, msgPostUpdated), nil
	}
}

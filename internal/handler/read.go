package handler

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"personal-website/internal/apperr"
	"personal-website/internal/model"
	"personal-website/internal/repository"
	"personal-website/internal/response"
)

const (
	postsPath   = "/posts"
	postsPrefix = postsPath + "/"

	msgPostNotFound       = "Post not found"
	msgProblemListingPost = "Problem retrieving posts"
)

// Read は記事一覧と記事本文を返す
type Read struct {
	table     repository.Table
	listLimit int
}

func NewRead(table repository.Table, listLimit int) *Read {
	return &Read{table: table, listLimit: listLimit}
}

// Handle は GET /, /posts (一覧) と /posts/{postId}, /{postId} (本文) を処理する
func (h *Read) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isListPath(req.Path) {
		return h.list(ctx), nil
	}
	return h.get(ctx, postKey(req)), nil
}

func (h *Read) list(ctx context.Context) events.APIGatewayProxyResponse {
	posts, err := h.table.Scan(ctx, h.listLimit)
	if err != nil {
		if errors.Is(err, repository.ErrNoScanResult) {
			return fail(ctx, "list", apperr.Storage(msgProblemListingPost, err))
		}
		return fail(ctx, "list", apperr.Storage("", err))
	}

	if len(posts) > h.listLimit {
		posts = posts[:h.listLimit]
	}
	summaries := make([]model.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, p.Summary())
	}
	return response.Success(summaries)
}

func (h *Read) get(ctx context.Context, postID string) events.APIGatewayProxyResponse {
	if postID == "" {
		return fail(ctx, "get", apperr.NotFound(msgPostNotFound))
	}

	post, err := h.table.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(ctx, "get", apperr.NotFound(msgPostNotFound))
		}
		return fail(ctx, "get", apperr.Storage("", err))
	}
	return response.HTML(post.HTML)
}

func isListPath(path string) bool {
	switch path {
	case "", "/", postsPath, postsPrefix:
		return true
	}
	return false
}

// postKey はパスから postId を取り出す
// パスパラメータがあればそれを優先し、なければ /posts/ または先頭の / を外す
func postKey(req events.APIGatewayProxyRequest) string {
	if id := req.PathParameters["postId"]; id != "" {
		return id
	}
	key, ok := strings.CutPrefix(req.Path, postsPrefix)
	if !ok {
		key = strings.TrimPrefix(req.Path, "/")
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	return key
}

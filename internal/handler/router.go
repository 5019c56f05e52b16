package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"personal-website/internal/response"
)

// Router は1つの関数で読み取りと書き込みの両方を受ける場合の振り分け
// (開発サーバーから利用する)
type Router struct {
	read  *Read
	write *Write
}

func NewRouter(read *Read, write *Write) *Router {
	return &Router{read: read, write: write}
}

func (r *Router) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case http.MethodGet:
		return r.read.Handle(ctx, req)
	case http.MethodHead:
		res, err := r.read.Handle(ctx, req)
		res.Body = ""
		return res, err
	case http.MethodPost:
		return r.write.Handle(ctx, req)
	case http.MethodOptions:
		return response.NoContent(), nil
	default:
		return response.NotFound("Not Found"), nil
	}
}

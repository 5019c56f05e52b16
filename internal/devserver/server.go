// Package devserver はローカル開発用に記事 API を HTTP で公開する。
// リクエストを API Gateway のプロキシイベントに変換し、Lambda と同じハンドラで処理する。
package devserver

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"personal-website/internal/handler"
	"personal-website/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// 本文の上限 (API Gateway のペイロード上限に合わせる)
const maxBodyBytes = 10 << 20

// NewEngine は全てのパスを h に渡す gin エンジンを生成する
func NewEngine(h handler.Func) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowMethods:    []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Location", requestIDHeader},
		AllowAllOrigins: true,
	}))
	r.NoRoute(proxy(handler.WithLogging(h)))
	return r
}

func proxy(h handler.Func) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := toEvent(c)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}

		res, err := h(c.Request.Context(), req)
		if err != nil {
			logger.Error("handler returned error", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Internal server error"})
			return
		}
		writeResponse(c, res)
	}
}

func toEvent(c *gin.Context) (events.APIGatewayProxyRequest, error) {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(requestIDHeader, requestID)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	if len(body) > maxBodyBytes {
		return events.APIGatewayProxyRequest{}, errors.New("request body too large")
	}

	req := events.APIGatewayProxyRequest{
		Resource:                        c.Request.URL.Path,
		Path:                            c.Request.URL.Path,
		HTTPMethod:                      c.Request.Method,
		Headers:                         map[string]string{},
		MultiValueHeaders:               map[string][]string{},
		QueryStringParameters:           map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
	}
	if c.Request.URL.RawPath != "" {
		req.Path = c.Request.URL.RawPath
	}
	for k, v := range c.Request.Header {
		req.Headers[k] = strings.Join(v, ",")
		req.MultiValueHeaders[k] = v
	}
	for k, v := range c.Request.URL.Query() {
		req.QueryStringParameters[k] = v[len(v)-1]
		req.MultiValueQueryStringParameters[k] = v
	}
	if utf8.Valid(body) {
		req.Body = string(body)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(body)
		req.IsBase64Encoded = true
	}
	req.RequestContext.RequestID = requestID
	req.RequestContext.HTTPMethod = req.HTTPMethod
	req.RequestContext.Path = req.Path
	req.RequestContext.Stage = "local"
	return req, nil
}

func writeResponse(c *gin.Context, res events.APIGatewayProxyResponse) {
	for k, v := range res.Headers {
		c.Header(k, v)
	}
	for k, vs := range res.MultiValueHeaders {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}

	body := []byte(res.Body)
	if res.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(res.Body)
		if err != nil {
			c.Status(http.StatusBadGateway)
			return
		}
		body = decoded
	}

	c.Status(res.StatusCode)
	// 本文がなくてもここでヘッダーを確定させる (gin の 404 フォールバックを防ぐ)
	c.Writer.WriteHeaderNow()
	if len(body) > 0 && c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(body)
	}
}

// Run は addr で待ち受け、ctx が終了したら graceful shutdown する
func Run(ctx context.Context, addr string, h handler.Func) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      NewEngine(h),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

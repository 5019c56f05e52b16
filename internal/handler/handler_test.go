package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal-website/internal/model"
	"personal-website/internal/repository"
	"personal-website/pkg/logger"
)

var fixedNow = time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.UTC)

const fixedTimestamp = "2024-05-01T12:30:45.123Z"

type failingTable struct {
	getErr  error
	putErr  error
	scanErr error
}

func (f failingTable) Get(context.Context, string) (model.Post, error) {
	return model.Post{}, f.getErr
}

func (f failingTable) Put(context.Context, model.Record) error {
	return f.putErr
}

func (f failingTable) Scan(context.Context, int) ([]model.Post, error) {
	return nil, f.scanErr
}

// oversizedTable は limit を無視して全件を返す
type oversizedTable struct {
	repository.Table
	posts []model.Post
}

func (o oversizedTable) Scan(context.Context, int) ([]model.Post, error) {
	return o.posts, nil
}

func newWrite(table repository.Table) *Write {
	return NewWrite(table, WithClock(func() time.Time { return fixedNow }))
}

func post(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/", Body: body}
}

func get(path string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: path}
}

func decodeBody(t *testing.T, res events.APIGatewayProxyResponse) map[string]string {
	t.Helper()
	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.Body), &m))
	return m
}

func TestWriteCreate(t *testing.T) {
	table := repository.NewMemoryTable()
	h := newWrite(table)

	res, err := h.Handle(context.Background(), post(`{"title":"Hello","html":"<p>hi</p>","tags":["go"]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, map[string]string{"message": "Post created"}, decodeBody(t, res))
	assert.Equal(t, "/posts/"+fixedTimestamp, res.Headers["Location"])

	got, err := table.Get(context.Background(), fixedTimestamp)
	require.NoError(t, err)
	assert.Equal(t, model.Post{
		PostID:  fixedTimestamp,
		Title:   "Hello",
		HTML:    "<p>hi</p>",
		Tags:    []string{"go"},
		Created: fixedTimestamp,
	}, got)
}

func TestWriteCreateWithEmptyPostID(t *testing.T) {
	for _, body := range []string{
		`{"postId":null,"title":"T","html":"H"}`,
		`{"postId":"","title":"T","html":"H"}`,
	} {
		t.Run(body, func(t *testing.T) {
			table := repository.NewMemoryTable()
			res, err := newWrite(table).Handle(context.Background(), post(body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, res.StatusCode)

			got, err := table.Get(context.Background(), fixedTimestamp)
			require.NoError(t, err)
			assert.Equal(t, fixedTimestamp, got.Created)
			assert.Empty(t, got.Updated)
			assert.Equal(t, []string{}, got.Tags)
		})
	}
}

func TestWriteUpdate(t *testing.T) {
	ctx := context.Background()
	table := repository.NewMemoryTable()
	require.NoError(t, table.Put(ctx, model.CreateRecord{
		PostID: "2023-01-01T00:00:00.000Z", Title: "old", HTML: "old", Tags: []string{"a"}, Created: "2023-01-01T00:00:00.000Z",
	}))
	h := newWrite(table)

	body := `{"postId":"2023-01-01T00:00:00.000Z","title":"new","html":"<h1>new</h1>"}`
	res, err := h.Handle(ctx, post(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, map[string]string{"message": "Post updated"}, decodeBody(t, res))
	assert.NotContains(t, res.Headers, "Location")

	got, err := table.Get(ctx, "2023-01-01T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, model.Post{
		PostID:  "2023-01-01T00:00:00.000Z",
		Title:   "new",
		HTML:    "<h1>new</h1>",
		Tags:    []string{},
		Updated: fixedTimestamp,
	}, got)

	// 同じ更新を繰り返しても結果は変わらない
	_, err = h.Handle(ctx, post(body))
	require.NoError(t, err)
	again, err := table.Get(ctx, "2023-01-01T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, table.Len())
}

func TestWriteUpdateMissingPostCreatesIt(t *testing.T) {
	table := repository.NewMemoryTable()
	res, err := newWrite(table).Handle(context.Background(), post(`{"postId":"unknown","title":"T","html":"H"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	got, err := table.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, fixedTimestamp, got.Updated)
	assert.Empty(t, got.Created)
}

func TestWriteRejects(t *testing.T) {
	tests := []struct {
		name    string
		req     events.APIGatewayProxyRequest
		message string
	}{
		{"empty body", post(""), "Blog post required"},
		{"missing title", post(`{"html":"H"}`), "Title and HTML are required"},
		{"missing html", post(`{"title":"T"}`), "Title and HTML are required"},
		{"empty title", post(`{"title":"","html":"H"}`), "Title and HTML are required"},
		{"not json", post(`title=T`), "Malformed blog post"},
		{"wrong type", post(`{"title":1,"html":"H"}`), "Malformed blog post"},
		{"trailing data", post(`{"title":"T","html":"H"}{}`), "Malformed blog post"},
		{"bad base64", events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true}, "Malformed blog post"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := repository.NewMemoryTable()
			res, err := newWrite(table).Handle(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, map[string]string{"message": tt.message}, decodeBody(t, res))
			assert.Zero(t, table.Puts())
		})
	}
}

func TestWriteBase64Body(t *testing.T) {
	table := repository.NewMemoryTable()
	body := base64.StdEncoding.EncodeToString([]byte(`{"title":"T","html":"H"}`))
	res, err := newWrite(table).Handle(context.Background(), events.APIGatewayProxyRequest{Body: body, IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, 1, table.Puts())
}

func TestWriteStorageError(t *testing.T) {
	h := newWrite(failingTable{putErr: errors.New("throttled")})
	res, err := h.Handle(context.Background(), post(`{"title":"T","html":"H"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, map[string]string{"error": "Internal Server Error"}, decodeBody(t, res))
}

func TestReadList(t *testing.T) {
	ctx := context.Background()
	table := repository.NewMemoryTable()
	for i := 0; i < 5; i++ {
		require.NoError(t, table.Put(ctx, model.CreateRecord{
			PostID: fmt.Sprintf("p%d", i), Title: "T", HTML: "H", Created: "c",
		}))
	}

	for _, path := range []string{"/", "/posts", "/posts/"} {
		t.Run(path, func(t *testing.T) {
			res, err := NewRead(table, 3).Handle(ctx, get(path))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, "application/json", res.Headers["Content-Type"])

			var summaries []model.PostSummary
			require.NoError(t, json.Unmarshal([]byte(res.Body), &summaries))
			assert.Len(t, summaries, 3)
			for _, s := range summaries {
				assert.Equal(t, []string{}, s.Tags)
			}
		})
	}
}

func TestReadListCapsOversizedScan(t *testing.T) {
	posts := make([]model.Post, 7)
	for i := range posts {
		posts[i] = model.Post{PostID: fmt.Sprintf("p%d", i), Title: "T", HTML: "H"}
	}

	res, err := NewRead(oversizedTable{posts: posts}, 4).Handle(context.Background(), get("/posts"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var summaries []model.PostSummary
	require.NoError(t, json.Unmarshal([]byte(res.Body), &summaries))
	require.Len(t, summaries, 4)
	assert.Equal(t, "p0", summaries[0].PostID)
	assert.Equal(t, "p3", summaries[3].PostID)
}

func TestReadListEmpty(t *testing.T) {
	res, err := NewRead(repository.NewMemoryTable(), 100).Handle(context.Background(), get("/"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, res.Body)
}

func TestReadListErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"no result set", repository.ErrNoScanResult, "Problem retrieving posts"},
		{"storage failure", errors.New("boom"), "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewRead(failingTable{scanErr: tt.err}, 100).Handle(context.Background(), get("/"))
			require.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
			assert.Equal(t, map[string]string{"error": tt.message}, decodeBody(t, res))
		})
	}
}

func TestReadPost(t *testing.T) {
	ctx := context.Background()
	table := repository.NewMemoryTable()
	html := "<article>\n  <h1>Tschüss &amp; 日本語</h1>\n</article>"
	require.NoError(t, table.Put(ctx, model.CreateRecord{PostID: "2024-01-01T00:00:00.000Z", Title: "T", HTML: html, Created: "c"}))
	h := NewRead(table, 100)

	tests := []struct {
		name string
		req  events.APIGatewayProxyRequest
	}{
		{"posts prefix", get("/posts/2024-01-01T00:00:00.000Z")},
		{"root path", get("/2024-01-01T00:00:00.000Z")},
		{"escaped", get("/posts/2024-01-01T00%3A00%3A00.000Z")},
		{"path parameter", events.APIGatewayProxyRequest{
			HTTPMethod:     http.MethodGet,
			Path:           "/posts/ignored",
			PathParameters: map[string]string{"postId": "2024-01-01T00:00:00.000Z"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Handle(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, html, res.Body)
			assert.Equal(t, "text/html; charset=utf-8", res.Headers["Content-Type"])
		})
	}
}

func TestReadPostNotFound(t *testing.T) {
	res, err := NewRead(repository.NewMemoryTable(), 100).Handle(context.Background(), get("/posts/nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, map[string]string{"message": "Post not found"}, decodeBody(t, res))
}

func TestReadPostStorageError(t *testing.T) {
	res, err := NewRead(failingTable{getErr: errors.New("boom")}, 100).Handle(context.Background(), get("/posts/x"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, map[string]string{"error": "Internal Server Error"}, decodeBody(t, res))
}

func TestCreateThenRead(t *testing.T) {
	ctx := context.Background()
	table := repository.NewMemoryTable()
	router := NewRouter(NewRead(table, 100), newWrite(table))

	res, err := router.Handle(ctx, post(`{"title":"Round trip","html":"<p>x</p>","tags":["a","b"]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, err = router.Handle(ctx, get(res.Headers["Location"]))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "<p>x</p>", res.Body)

	res, err = router.Handle(ctx, get("/posts"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"postId":"`+fixedTimestamp+`","title":"Round trip","html":"<p>x</p>","created":"`+fixedTimestamp+`","tags":["a","b"]}]`, res.Body)
}

func TestRouterMethods(t *testing.T) {
	table := repository.NewMemoryTable()
	router := NewRouter(NewRead(table, 100), newWrite(table))
	ctx := context.Background()

	res, err := router.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, err = router.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodHead, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, res.Body)

	res, err = router.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodDelete, Path: "/posts/x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, map[string]string{"message": "Not Found"}, decodeBody(t, res))
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	var gotCtx context.Context
	next := func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		gotCtx = ctx
		return events.APIGatewayProxyResponse{StatusCode: http.StatusTeapot}, nil
	}
	req := events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/posts"}
	req.RequestContext.RequestID = "req-1"

	res, err := WithLogging(next)(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, res.StatusCode)
	assert.NotSame(t, logger.Logger, logger.FromContext(gotCtx))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "handled request", entry["msg"])
	assert.Equal(t, "req-1", entry["requestId"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, http.MethodGet, entry["method"])
	assert.Equal(t, "/posts", entry["path"])
	assert.Contains(t, entry, "duration")
}

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal-website/internal/devserver"
	"personal-website/internal/handler"
	"personal-website/internal/model"
	"personal-website/internal/repository"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	table := repository.NewMemoryTable()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	router := handler.NewRouter(handler.NewRead(table, 100), handler.NewWrite(table, handler.WithClock(now)))
	srv := httptest.NewServer(devserver.NewEngine(router.Handle))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	res, err := c.Put(ctx, model.PostRequest{Title: "first", HTML: "<p>1</p>", Tags: []string{"go", "aws"}})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Post created", res.Message)
	assert.Equal(t, "/posts/2024-01-01T00:00:01.000Z", res.Location)

	_, err = c.Put(ctx, model.PostRequest{Title: "second", HTML: "<p>2</p>", Tags: []string{"go"}})
	require.NoError(t, err)

	id := "2024-01-01T00:00:01.000Z"
	res, err = c.Put(ctx, model.PostRequest{PostID: &id, Title: "first!", HTML: "<p>1!</p>", Tags: []string{"go", "aws"}})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Post updated", res.Message)

	html, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "<p>1!</p>", html)

	posts, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	tags, err := c.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Tag: "go", Count: 2}, {Tag: "aws", Count: 1}}, tags)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Get(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Post not found", apiErr.Message)

	_, err = c.Put(ctx, model.PostRequest{Title: "no html"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Title and HTML are required", apiErr.Message)
}

func TestCountTags(t *testing.T) {
	got := CountTags([]model.PostSummary{
		{Tags: []string{"b", "a"}},
		{Tags: []string{"a"}},
		{Tags: []string{}},
	})
	assert.Equal(t, []TagCount{{Tag: "a", Count: 2}, {Tag: "b", Count: 1}}, got)
	assert.Empty(t, CountTags(nil))
}

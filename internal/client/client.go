// Package client は記事 API の HTTP クライアント。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"personal-website/internal/model"
)

// APIError は 2xx 以外の応答
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Client は記事 API を呼び出す
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PutResult は書き込み結果
type PutResult struct {
	Created  bool
	Location string
	Message  string
}

// TagCount はタグごとの記事数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// List は記事一覧を取得する
func (c *Client) List(ctx context.Context) ([]model.PostSummary, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/posts", nil)
	if err != nil {
		return nil, err
	}
	var posts []model.PostSummary
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode post list: %w", err)
	}
	return posts, nil
}

// Get は記事本文 (HTML) を取得する
func (c *Client) Get(ctx context.Context, postID string) (string, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Put は記事を作成または更新する
func (c *Client) Put(ctx context.Context, req model.PostRequest) (PutResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return PutResult{}, fmt.Errorf("failed to encode post: %w", err)
	}
	body, res, err := c.do(ctx, http.MethodPost, "/posts", payload)
	if err != nil {
		return PutResult{}, err
	}
	return PutResult{
		Created:  res.StatusCode == http.StatusCreated,
		Location: res.Header.Get("Location"),
		Message:  messageOf(body),
	}, nil
}

// TagCounts は一覧からタグごとの件数を数える (件数の多い順、同数はタグ名順)
func (c *Client) TagCounts(ctx context.Context) ([]TagCount, error) {
	posts, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return CountTags(posts), nil
}

func CountTags(posts []model.PostSummary) []TagCount {
	counts := map[string]int{}
	for _, p := range posts {
		for _, tag := range p.Tags {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, *http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, nil, &APIError{StatusCode: res.StatusCode, Message: messageOf(body)}
	}
	return body, res, nil
}

// messageOf は {"message"} または {"error"} の値を取り出す
func messageOf(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return strings.TrimSpace(string(body))
	}
	if m.Message != "" {
		return m.Message
	}
	if m.Error != "" {
		return m.Error
	}
	return strings.TrimSpace(string(body))
}

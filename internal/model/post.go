package model

import "time"

// タイムスタンプの書式 (ISO-8601, ミリ秒, UTC)
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp は時刻を保存用の文字列に変換する
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ブログ記事のデータモデル
// Created と Updated はどちらか一方のみ設定される
type Post struct {
	PostID  string   `json:"postId" dynamodbav:"postId"`
	Title   string   `json:"title" dynamodbav:"title"`
	HTML    string   `json:"html" dynamodbav:"html"`
	Tags    []string `json:"tags" dynamodbav:"tags"`
	Created string   `json:"created,omitempty" dynamodbav:"created,omitempty"`
	Updated string   `json:"updated,omitempty" dynamodbav:"updated,omitempty"`
}

// 記事一覧の表示用フィールド
type PostSummary struct {
	PostID  string   `json:"postId"`
	Title   string   `json:"title"`
	HTML    string   `json:"html"`
	Created string   `json:"created,omitempty"`
	Tags    []string `json:"tags"`
}

// Summary は一覧表示用の射影を返す
func (p Post) Summary() PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		PostID:  p.PostID,
		Title:   p.Title,
		HTML:    p.HTML,
		Created: p.Created,
		Tags:    tags,
	}
}

// 記事作成・更新リクエスト
// PostID が null または空文字なら作成として扱う
type PostRequest struct {
	PostID *string  `json:"postId"`
	Title  string   `json:"title" validate:"required"`
	HTML   string   `json:"html" validate:"required"`
	Tags   []string `json:"tags"`
}

// IsUpdate は更新リクエストかどうかを返す
func (r PostRequest) IsUpdate() bool {
	return r.PostID != nil && *r.PostID != ""
}

// Record はテーブルへ書き込む1件分の記事
// CreateRecord か UpdateRecord のどちらかで、作成日時と更新日時が同時に入ることはない
type Record interface {
	Post() Post
	record()
}

// 新規作成レコード
type CreateRecord struct {
	PostID  string
	Title   string
	HTML    string
	Tags    []string
	Created string
}

func (r CreateRecord) Post() Post {
	return Post{
		PostID:  r.PostID,
		Title:   r.Title,
		HTML:    r.HTML,
		Tags:    nonNilTags(r.Tags),
		Created: r.Created,
	}
}

func (CreateRecord) record() {}

// 更新レコード (全置換)
type UpdateRecord struct {
	PostID  string
	Title   string
	HTML    string
	Tags    []string
	Updated string
}

func (r UpdateRecord) Post() Post {
	return Post{
		PostID:  r.PostID,
		Title:   r.Title,
		HTML:    r.HTML,
		Tags:    nonNilTags(r.Tags),
		Updated: r.Updated,
	}
}

func (UpdateRecord) record() {}

// NewRecord はリクエストと現在時刻から書き込みレコードを組み立てる
func NewRecord(req PostRequest, now time.Time) Record {
	ts := Timestamp(now)
	if req.IsUpdate() {
		return UpdateRecord{
			PostID:  *req.PostID,
			Title:   req.Title,
			HTML:    req.HTML,
			Tags:    req.Tags,
			Updated: ts,
		}
	}
	return CreateRecord{
		PostID:  ts,
		Title:   req.Title,
		HTML:    req.HTML,
		Tags:    req.Tags,
		Created: ts,
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

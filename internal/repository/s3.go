package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"personal-website/internal/model"
	"personal-website/pkg/logger"
)

// S3ベースの記事テーブル
// 記事は <prefix><postId>.json として保存する
type S3Table struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ Table = (*S3Table)(nil)

// S3テーブルのコンストラクタ
func NewS3Table(cfg aws.Config, bucket, prefix string, opts ...func(*s3.Options)) *S3Table {
	return &S3Table{
		client: s3.NewFromConfig(cfg, opts...),
		bucket: bucket,
		prefix: prefix,
	}
}

// 404エラーの判定
func isNotFoundError(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return err != nil && (errors.As(err, &noSuchKey) || errors.As(err, &notFound))
}

func (r *S3Table) key(postID string) string {
	return r.prefix + url.PathEscape(postID) + ".json"
}

// S3キーから記事を取得
func (r *S3Table) getPostByKey(ctx context.Context, key string) (model.Post, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, fmt.Errorf("failed to get post: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to read post body: %w", err)
	}

	var post model.Post
	if err := json.Unmarshal(body, &post); err != nil {
		return model.Post{}, fmt.Errorf("failed to unmarshal post: %w", err)
	}
	return post, nil
}

// 指定IDの記事を取得
func (r *S3Table) Get(ctx context.Context, postID string) (model.Post, error) {
	logger.Debug("getting post from S3", "postId", postID, "bucket", r.bucket)
	return r.getPostByKey(ctx, r.key(postID))
}

// 記事をS3に保存
func (r *S3Table) Put(ctx context.Context, rec model.Record) error {
	post := rec.Post()
	body, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	key := r.key(post.PostID)
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		logger.Error("failed to save post", "key", key, "error", err)
		return fmt.Errorf("failed to save post: %w", err)
	}

	logger.Info("successfully saved post", "key", key)
	return nil
}

// 記事一覧を取得
func (r *S3Table) Scan(ctx context.Context, limit int) ([]model.Post, error) {
	logger.Debug("listing posts from S3", "bucket", r.bucket)

	out, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.bucket),
		Prefix:  aws.String(r.prefix),
		MaxKeys: aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]model.Post, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if !strings.HasSuffix(key, ".json") {
			continue
		}

		post, err := r.getPostByKey(ctx, key)
		if err != nil {
			// 一覧取得中に消えたオブジェクトはスキップ
			logger.Warn("failed to get post", "key", key, "error", err)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

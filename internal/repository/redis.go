package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/go-redis/redis/v8"

	"personal-website/internal/model"
)

const (
	redisPostKeyPrefix = "post:"
	redisIndexKey      = "posts"
)

// Redis ベースの記事テーブル
type RedisTable struct {
	client *redis.Client
}

var _ Table = (*RedisTable)(nil)

func NewRedisTable(client *redis.Client) *RedisTable {
	return &RedisTable{client: client}
}

func redisPostKey(postID string) string {
	return redisPostKeyPrefix + postID
}

func (s *RedisTable) Get(ctx context.Context, postID string) (model.Post, error) {
	data, err := s.client.Get(ctx, redisPostKey(postID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Post{}, ErrNotFound
		}
		return model.Post{}, fmt.Errorf("getting post: %w", err)
	}
	var post model.Post
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return model.Post{}, fmt.Errorf("decoding post: %w", err)
	}
	return post, nil
}

// Put は記事本体とインデックスを1パイプラインで書き込む
func (s *RedisTable) Put(ctx context.Context, rec model.Record) error {
	post := rec.Post()
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encoding post: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, redisPostKey(post.PostID), data, 0)
	pipe.SAdd(ctx, redisIndexKey, post.PostID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storing post: %w", err)
	}
	return nil
}

// Scan は postId 順に最大 limit 件を返す
func (s *RedisTable) Scan(ctx context.Context, limit int) ([]model.Post, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing post ids: %w", err)
	}
	if len(ids) == 0 {
		return []model.Post{}, nil
	}
	slices.Sort(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, redisPostKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}

	posts := make([]model.Post, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("fetching post: %w", err)
		}
		var post model.Post
		if err := json.Unmarshal([]byte(data), &post); err != nil {
			return nil, fmt.Errorf("decoding post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

package repository

import (
	"context"
	"slices"
	"sync"

	"personal-website/internal/model"
)

// メモリ上の記事テーブル (開発サーバー・テスト用)
type MemoryTable struct {
	mu    sync.RWMutex
	posts map[string]model.Post
	puts  int
}

var _ Table = (*MemoryTable)(nil)

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{posts: make(map[string]model.Post)}
}

func (m *MemoryTable) Get(ctx context.Context, postID string) (model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[postID]
	if !ok {
		return model.Post{}, ErrNotFound
	}
	return clonePost(p), nil
}

func (m *MemoryTable) Put(ctx context.Context, rec model.Record) error {
	p := rec.Post()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts[p.PostID] = clonePost(p)
	m.puts++
	return nil
}

// Scan は postId 順に最大 limit 件を返す
func (m *MemoryTable) Scan(ctx context.Context, limit int) ([]model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.posts))
	for id := range m.posts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	posts := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, clonePost(m.posts[id]))
	}
	return posts, nil
}

// Puts は書き込み回数を返す
func (m *MemoryTable) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// Len は保存件数を返す
func (m *MemoryTable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.posts)
}

func clonePost(p model.Post) model.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

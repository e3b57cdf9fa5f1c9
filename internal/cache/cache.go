// Package cache はフィード種別ごとの短期レスポンスキャッシュを提供する。
//
// エントリは保存後に変更しない。更新は新しいエントリへのポインタ差し替えで行うため、
// 読み取り側は常に一貫したステータスとボディの組を受け取る。
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/urdh/homepage/internal/metrics"
	"github.com/urdh/homepage/internal/model"
)

// Fetcher は上流を1回呼び出して結果を返す関数。
type Fetcher func(ctx context.Context) model.FetchResult

// Entry はキャッシュされた1フィード分の応答。
type Entry struct {
	Kind      model.FeedKind
	Result    model.FetchResult
	Status    int
	Body      []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Expired はnowの時点でエントリが期限切れかどうかを返す。
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Cache はFeedKindをキーとするTTL付きキャッシュ。
// 同じ種類のフェッチは同時に1つしか実行しない。
type Cache struct {
	mu      sync.RWMutex
	entries map[model.FeedKind]*Entry

	group   singleflight.Group
	now     func() time.Time
	metrics metrics.MetricsCollector
}

// Option はCacheの設定を変更する。
type Option func(*Cache)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithMetrics はヒット・ミスを記録するMetricsCollectorを設定する。
func WithMetrics(m metrics.MetricsCollector) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New はCacheの新しいインスタンスを生成する。
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[model.FeedKind]*Entry),
		now:     time.Now,
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch は有効なエントリがあればそれを返し、なければfetcherを実行して保存する。
// エラー結果もttlの間キャッシュする。
// fetcherは呼び出し元のキャンセルから切り離したコンテキストで実行する。
func (c *Cache) GetOrFetch(ctx context.Context, kind model.FeedKind, ttl time.Duration, fetcher Fetcher) *Entry {
	if e := c.lookup(kind); e != nil {
		c.metrics.RecordCacheHit(string(kind))
		return e
	}
	c.metrics.RecordCacheMiss(string(kind))

	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(string(kind), func() (any, error) {
		// 待機中に別のリクエストが更新している場合がある
		if e := c.lookup(kind); e != nil {
			return e, nil
		}

		result := fetcher(fetchCtx)
		status, body := model.EncodeResult(result)
		now := c.now()
		e := &Entry{
			Kind:      kind,
			Result:    result,
			Status:    status,
			Body:      body,
			FetchedAt: now,
			ExpiresAt: now.Add(ttl),
		}

		c.mu.Lock()
		c.entries[kind] = e
		c.mu.Unlock()

		return e, nil
	})

	return v.(*Entry)
}

// Peek は期限に関係なく保存済みのエントリを返す。
func (c *Cache) Peek(kind model.FeedKind) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[kind]
	return e, ok
}

// Len は保存済みのエントリ数を返す。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge はすべてのエントリを破棄する。
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[model.FeedKind]*Entry)
	c.mu.Unlock()
}

func (c *Cache) lookup(kind model.FeedKind) *Entry {
	c.mu.RLock()
	e, ok := c.entries[kind]
	c.mu.RUnlock()
	if !ok || e.Expired(c.now()) {
		return nil
	}
	return e
}

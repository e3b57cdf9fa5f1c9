// Package feed はフィード種別ごとのアダプター、キャッシュ、TTLをまとめるサービス層を提供する。
package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/urdh/homepage/internal/cache"
	"github.com/urdh/homepage/internal/metrics"
	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/provider"
)

// ErrUnknownFeed はアダプターが登録されていないフィード種別を要求した場合のエラー。
var ErrUnknownFeed = errors.New("unknown feed")

// defaultTTL はTTL表にない種別に使うTTL。
const defaultTTL = 5 * time.Minute

// Service はフィードの取得をキャッシュ経由で行うサービス。
type Service struct {
	adapters map[model.FeedKind]provider.Adapter
	ttls     map[model.FeedKind]time.Duration
	cache    *cache.Cache
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// 同じ種別のアダプターが複数渡された場合は後のものを使う。
func NewService(
	adapters []provider.Adapter,
	ttls map[model.FeedKind]time.Duration,
	c *cache.Cache,
	m metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	byKind := make(map[model.FeedKind]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &Service{
		adapters: byKind,
		ttls:     ttls,
		cache:    c,
		metrics:  m,
		logger:   logger,
	}
}

// Get はフィードの応答を返す。有効なキャッシュがあれば上流を呼び出さない。
func (s *Service) Get(ctx context.Context, kind model.FeedKind) (*cache.Entry, error) {
	adapter, ok := s.adapters[kind]
	if !ok {
		return nil, ErrUnknownFeed
	}
	return s.cache.GetOrFetch(ctx, kind, s.TTL(kind), s.fetcher(adapter)), nil
}

// TTL はフィード種別のキャッシュ有効期間を返す。
func (s *Service) TTL(kind model.FeedKind) time.Duration {
	if ttl, ok := s.ttls[kind]; ok && ttl > 0 {
		return ttl
	}
	return defaultTTL
}

// Kinds は登録済みのフィード種別をFeedKindの定義順で返す。
func (s *Service) Kinds() []model.FeedKind {
	kinds := make([]model.FeedKind, 0, len(s.adapters))
	for _, k := range model.AllFeedKinds() {
		if _, ok := s.adapters[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// fetcher はアダプター呼び出しをメトリクスとログで包む。
func (s *Service) fetcher(adapter provider.Adapter) cache.Fetcher {
	return func(ctx context.Context) model.FetchResult {
		feed := string(adapter.Kind())

		start := time.Now()
		result := adapter.Fetch(ctx)
		duration := time.Since(start)

		s.metrics.RecordFetchLatency(feed, duration)
		s.metrics.RecordRecordsDropped(feed, result.Dropped)

		if !result.IsOK() {
			s.metrics.RecordFetchFailure(feed, result.Err.Kind.String())
			s.logger.Warn("フィードの取得に失敗しました",
				slog.String("feed", feed),
				slog.String("provider", adapter.Provider()),
				slog.String("reason", result.Err.Kind.String()),
				slog.Int("http_status", result.Err.StatusCode),
				slog.String("error", result.Err.Message),
				slog.Float64("duration_ms", float64(duration.Milliseconds())),
			)
			return result
		}

		s.metrics.RecordFetchSuccess(feed)
		if result.Dropped > 0 {
			s.logger.Warn("不完全なレコードを破棄しました",
				slog.String("feed", feed),
				slog.String("provider", adapter.Provider()),
				slog.Int("dropped", result.Dropped),
			)
		}
		s.logger.Info("フィードを取得しました",
			slog.String("feed", feed),
			slog.String("provider", adapter.Provider()),
			slog.Int("items", len(result.Items)),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		return result
	}
}

package feed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/urdh/homepage/internal/cache"
	"github.com/urdh/homepage/internal/metrics"
	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/provider"
)

// mockAdapter はテスト用のAdapterモック。
type mockAdapter struct {
	kind   model.FeedKind
	result model.FetchResult
	calls  atomic.Int32
}

func (m *mockAdapter) Kind() model.FeedKind { return m.kind }
func (m *mockAdapter) Provider() string { return "mock" }

func (m *mockAdapter) Fetch(_ context.Context) model.FetchResult {
	m.calls.Add(1)
	return m.result
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestService_Get_CachesWithinTTL(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := cache.New(cache.WithClock(func() time.Time { return now }))

	tracks := &mockAdapter{kind: model.FeedKindTracks, result: model.OK([]model.Track{{Artist: "a", Title: "t"}})}
	var buf bytes.Buffer
	s := NewService([]provider.Adapter{tracks},
		map[model.FeedKind]time.Duration{model.FeedKindTracks: 150 * time.Second},
		c, nil, newTestLogger(&buf))

	first, err := s.Get(context.Background(), model.FeedKindTracks)
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	second, err := s.Get(context.Background(), model.FeedKindTracks)
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}

	if n := tracks.calls.Load(); n != 1 {
		t.Errorf("アダプター呼び出し回数 = %d, want 1", n)
	}
	if !bytes.Equal(first.Body, second.Body) {
		t.Errorf("ボディが一致しない")
	}
	if want := now.Add(150 * time.Second); !first.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", first.ExpiresAt, want)
	}
}

func TestService_Get_UnknownFeed(t *testing.T) {
	var buf bytes.Buffer
	s := NewService(nil, nil, cache.New(), nil, newTestLogger(&buf))

	_, err := s.Get(context.Background(), model.FeedKindPhotos)
	if !errors.Is(err, ErrUnknownFeed) {
		t.Errorf("err = %v, want ErrUnknownFeed", err)
	}
}

func TestService_TTL(t *testing.T) {
	var buf bytes.Buffer
	s := NewService(nil, map[model.FeedKind]time.Duration{
		model.FeedKindCurrentlyReading: 24 * time.Hour,
		model.FeedKindCommits:          0,
	}, cache.New(), nil, newTestLogger(&buf))

	if got := s.TTL(model.FeedKindCurrentlyReading); got != 24*time.Hour {
		t.Errorf("TTL(currently-reading) = %v, want 24h", got)
	}
	if got := s.TTL(model.FeedKindCommits); got != defaultTTL {
		t.Errorf("TTL(commits) = %v, want %v", got, defaultTTL)
	}
	if got := s.TTL(model.FeedKindPhotos); got != defaultTTL {
		t.Errorf("TTL(photos) = %v, want %v", got, defaultTTL)
	}
}

func TestService_Kinds_InDefinitionOrder(t *testing.T) {
	var buf bytes.Buffer
	s := NewService([]provider.Adapter{
		&mockAdapter{kind: model.FeedKindPhotos},
		&mockAdapter{kind: model.FeedKindTracks},
	}, nil, cache.New(), nil, newTestLogger(&buf))

	kinds := s.Kinds()
	if len(kinds) != 2 || kinds[0] != model.FeedKindTracks || kinds[1] != model.FeedKindPhotos {
		t.Errorf("Kinds() = %v, want [tracks photos]", kinds)
	}
}

func TestService_Get_FailureIsLoggedAndRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	commits := &mockAdapter{
		kind:   model.FeedKindCommits,
		result: model.Failed(model.NewUpstreamError("github", 403, "API rate limit exceeded")),
	}
	var buf bytes.Buffer
	s := NewService([]provider.Adapter{commits}, nil, cache.New(), collector, newTestLogger(&buf))

	e, err := s.Get(context.Background(), model.FeedKindCommits)
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if e.Status != 500 {
		t.Errorf("Status = %d, want 500", e.Status)
	}

	// 2回目はキャッシュされたエラーを返す
	if _, err := s.Get(context.Background(), model.FeedKindCommits); err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if n := commits.calls.Load(); n != 1 {
		t.Errorf("アダプター呼び出し回数 = %d, want 1", n)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "フィードの取得に失敗しました") || !strings.Contains(logOutput, `"http_status":403`) {
		t.Errorf("失敗がログに出力されていない: %s", logOutput)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "homepage_upstream_fetch_fail_total" {
			found = true
			if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 1 {
				t.Errorf("fetch_fail_total = %v, want 1", val)
			}
		}
	}
	if !found {
		t.Error("homepage_upstream_fetch_fail_total metric not found")
	}
}

func TestService_Get_RecordsDroppedRecords(t *testing.T) {
	result := model.OK([]model.Photo{{URL: "https://example.com/"}})
	result.Dropped = 2
	photos := &mockAdapter{kind: model.FeedKindPhotos, result: result}

	var buf bytes.Buffer
	s := NewService([]provider.Adapter{photos}, nil, cache.New(), metrics.Nop{}, newTestLogger(&buf))

	if _, err := s.Get(context.Background(), model.FeedKindPhotos); err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if !strings.Contains(buf.String(), `"dropped":2`) {
		t.Errorf("破棄件数がログに出力されていない: %s", buf.String())
	}
}

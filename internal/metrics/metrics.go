// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// キャッシュ、フィードサービス、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordFetchSuccess(feed string)
	RecordFetchFailure(feed string, reason string)
	RecordFetchLatency(feed string, duration time.Duration)
	RecordRecordsDropped(feed string, count int)
	RecordCacheHit(feed string)
	RecordCacheMiss(feed string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	fetchSuccess   *prometheus.CounterVec
	fetchFail      *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	recordsDropped *prometheus.CounterVec
	cacheHit       *prometheus.CounterVec
	cacheMiss      *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homepage_upstream_fetch_success_total",
			Help: "上流フェッチ成功の合計数",
		}, []string{"feed"}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homepage_upstream_fetch_fail_total",
			Help: "上流フェッチ失敗の合計数",
		}, []string{"feed", "reason"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homepage_upstream_fetch_latency_seconds",
			Help:    "上流フェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"feed"}),
		recordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homepage_records_dropped_total",
			Help: "必須フィールド欠損で破棄したレコードの合計数",
		}, []string{"feed"}),
		cacheHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homepage_cache_hit_total",
			Help: "レスポンスキャッシュのヒット数",
		}, []string{"feed"}),
		cacheMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homepage_cache_miss_total",
			Help: "レスポンスキャッシュのミス数",
		}, []string{"feed"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "homepage_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.fetchLatency,
		c.recordsDropped,
		c.cacheHit,
		c.cacheMiss,
		c.httpStatus,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(feed string) {
	c.fetchSuccess.WithLabelValues(feed).Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。reasonはErrorKindの名前。
func (c *Collector) RecordFetchFailure(feed string, reason string) {
	c.fetchFail.WithLabelValues(feed, reason).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(feed string, duration time.Duration) {
	c.fetchLatency.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordRecordsDropped は破棄したレコード数を記録する。
func (c *Collector) RecordRecordsDropped(feed string, count int) {
	if count <= 0 {
		return
	}
	c.recordsDropped.WithLabelValues(feed).Add(float64(count))
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(feed string) {
	c.cacheHit.WithLabelValues(feed).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(feed string) {
	c.cacheMiss.WithLabelValues(feed).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordFetchSuccess(string) {}
func (Nop) RecordFetchFailure(string, string) {}
func (Nop) RecordFetchLatency(string, time.Duration) {}
func (Nop) RecordRecordsDropped(string, int) {}
func (Nop) RecordCacheHit(string) {}
func (Nop) RecordCacheMiss(string) {}
func (Nop) RecordHTTPStatus(int) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

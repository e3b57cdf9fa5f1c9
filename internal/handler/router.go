package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/urdh/homepage/internal/metrics"
	"github.com/urdh/homepage/internal/middleware"
	"github.com/urdh/homepage/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// フィード
	FeedService FeedServiceInterface

	// 静的ファイルとエラーページ
	Site *Site

	// /metrics。nilの場合は公開しない
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → MergeSlashes → Recovery → Logging → SecurityHeaders → GetHead → Compress
//
// フィードのルートにのみRateLimit → CORSを追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewMergeSlashesMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(chimw.GetHead)
	r.Use(chimw.Compress(5))

	feedHandler := NewFeedHandler(deps.FeedService)

	// --- フィード ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

		for _, kind := range model.AllFeedKinds() {
			h := feedHandler.Serve(kind)
			r.Get(kind.Path(), h)
			// プリフライトはCORSミドルウェアが204で応答する
			r.Options(kind.Path(), h)
		}
	})

	r.Get("/health", Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 旧URL ---
	registerLegacyRoutes(r, deps.Site)

	// --- 静的ファイル ---
	r.NotFound(deps.Site.NotFound)
	r.Get("/*", deps.Site.ServeStatic)

	return r
}

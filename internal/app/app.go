// Package app はコマンドの解析、依存関係のワイヤリング、サーバーの起動を行う。
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/urdh/homepage/internal/cache"
	"github.com/urdh/homepage/internal/config"
	"github.com/urdh/homepage/internal/feed"
	"github.com/urdh/homepage/internal/handler"
	"github.com/urdh/homepage/internal/logger"
	"github.com/urdh/homepage/internal/metrics"
	"github.com/urdh/homepage/internal/middleware"
	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/provider"
	"github.com/urdh/homepage/internal/security"
)

const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルでログを再設定する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("static_dir", cfg.StaticDir),
	)

	switch cmd {
	case CommandFetch:
		return runFetch(context.Background(), cfg, args[1:], os.Stdout)
	default:
		return runServe(cfg)
	}
}

// newFeedService はプロバイダーアダプター、キャッシュ、TTLを組み立ててフィードサービスを返す。
func newFeedService(cfg *config.Config, m metrics.MetricsCollector, log *slog.Logger) *feed.Service {
	guard := security.NewUpstreamGuard(cfg.UpstreamAllowPrivate)
	if err := guard.ValidateURL(cfg.PhotosURL); err != nil {
		slog.Warn("PHOTOS_URLが不正です。写真フィードは取得に失敗します",
			slog.String("error", err.Error()),
		)
	}

	client := provider.NewClient(guard.NewClient(cfg.UpstreamTimeout), log, cfg.UpstreamTimeout, cfg.UpstreamMaxSize)

	adapters := []provider.Adapter{
		provider.NewLastfm(provider.LastfmConfig{
			APIKey: cfg.LastfmAPIKey,
			User:   cfg.LastfmUser,
			Limit:  cfg.LastfmTrackLimit,
		}, client),
		provider.NewGoodreads(provider.GoodreadsConfig{
			APIKey: cfg.GoodreadsAPIKey,
			User:   cfg.GoodreadsUser,
		}, client),
		provider.NewGitHub(provider.GitHubConfig{
			User:  cfg.GitHubUser,
			Token: cfg.GitHubToken,
			Limit: cfg.GitHubCommitLimit,
		}, client),
		provider.NewPhotos(provider.PhotosConfig{
			URL: cfg.PhotosURL,
		}, client, security.NewTextSanitizer()),
	}

	return feed.NewService(adapters, cfg.FeedTTLs(), cache.New(cache.WithMetrics(m)), m, log)
}

// newServer はルーターを構築したhttp.Serverを返す。
// 戻り値のRateLimiterはサーバー停止後にStopする。
func newServer(cfg *config.Config, log *slog.Logger) (*http.Server, *middleware.RateLimiter) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(cfg.RateLimitFeeds))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		Metrics:           collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		FeedService:       newFeedService(cfg, collector, log),
		Site:              handler.NewSite(os.DirFS(cfg.StaticDir)),
		MetricsHandler:    metrics.Handler(registry),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return server, rateLimiter
}

// runServe はHTTPサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	server, rateLimiter := newServer(cfg, slog.Default())
	defer rateLimiter.Stop()

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen failed: %w", err)
	case <-stop:
	}
	slog.Info("shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("HTTP server stopped gracefully")
	return nil
}

// fetchOutput はfetchサブコマンドが1フィードごとに出力するJSON行。
type fetchOutput struct {
	Feed   model.FeedKind  `json:"feed"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// runFetch は指定したフィード（省略時は全フィード）を1回ずつ取得し、結果をJSON行でoutに書き出す。
// 1つでも失敗したフィードがあればエラーを返す。
func runFetch(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	var kinds []model.FeedKind
	for _, arg := range args {
		kind, err := model.ParseFeedKind(arg)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	svc := newFeedService(cfg, metrics.Nop{}, slog.Default())
	if len(kinds) == 0 {
		kinds = svc.Kinds()
	}
	enc := json.NewEncoder(out)

	var failed []model.FeedKind
	for _, kind := range kinds {
		entry, err := svc.Get(ctx, kind)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", kind, err)
		}
		if err := enc.Encode(fetchOutput{Feed: kind, Status: entry.Status, Body: entry.Body}); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if entry.Status != http.StatusOK {
			failed = append(failed, kind)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("feeds failed: %v", failed)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

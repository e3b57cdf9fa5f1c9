// Package config は環境変数からアプリケーションの設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urdh/homepage/internal/model"
)

// DefaultPhotosURL は写真ギャラリーのフィードURLの既定値。
const DefaultPhotosURL = "https://photography.sigurdhsson.org/photos.json"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort string
	StaticDir  string

	// CORS
	CORSAllowedOrigin string

	// Last.fm
	LastfmAPIKey     string
	LastfmUser       string
	LastfmTrackLimit int

	// Goodreads
	GoodreadsAPIKey string
	GoodreadsUser   string

	// GitHub
	GitHubUser        string
	GitHubToken       string
	GitHubCommitLimit int

	// Photos
	PhotosURL string

	// Cache TTL
	TracksTTL  time.Duration
	BooksTTL   time.Duration
	CommitsTTL time.Duration
	PhotosTTL  time.Duration

	// Upstream
	UpstreamTimeout      time.Duration
	UpstreamMaxSize      int64
	UpstreamAllowPrivate bool

	// Rate Limit
	RateLimitFeeds int

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 値が解釈できない場合は既定値を使う。TTLとタイムアウトが0以下の場合はエラーを返す。
// APIキーが未設定でもエラーにはしない（該当フィードが呼び出し時に失敗する）。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.StaticDir = getEnvString("STATIC_DIR", "public")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	cfg.LastfmAPIKey = os.Getenv("LASTFM_API_KEY")
	cfg.LastfmUser = getEnvString("LASTFM_USER", "TinyGuy")
	cfg.LastfmTrackLimit = getEnvInt("LASTFM_TRACK_LIMIT", 5)

	cfg.GoodreadsAPIKey = os.Getenv("GOODREADS_API_KEY")
	cfg.GoodreadsUser = getEnvString("GOODREADS_USER", "27549920")

	cfg.GitHubUser = getEnvString("GITHUB_USER", "urdh")
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitHubCommitLimit = getEnvInt("GITHUB_COMMIT_LIMIT", 5)

	cfg.PhotosURL = getEnvString("PHOTOS_URL", DefaultPhotosURL)

	cfg.TracksTTL = getEnvDuration("TRACKS_TTL", 150*time.Second)
	cfg.BooksTTL = getEnvDuration("BOOKS_TTL", 24*time.Hour)
	cfg.CommitsTTL = getEnvDuration("COMMITS_TTL", 5*time.Minute)
	cfg.PhotosTTL = getEnvDuration("PHOTOS_TTL", time.Hour)

	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second)
	cfg.UpstreamMaxSize = getEnvInt64("UPSTREAM_MAX_SIZE", 5242880)
	cfg.UpstreamAllowPrivate = getEnvBool("UPSTREAM_ALLOW_PRIVATE", false)

	cfg.RateLimitFeeds = getEnvInt("RATE_LIMIT_FEEDS", 60)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	if cfg.LastfmTrackLimit <= 0 {
		cfg.LastfmTrackLimit = 5
	}
	if cfg.GitHubCommitLimit <= 0 {
		cfg.GitHubCommitLimit = 5
	}
	if cfg.UpstreamMaxSize <= 0 {
		cfg.UpstreamMaxSize = 5242880
	}

	var invalid []string
	for name, d := range map[string]time.Duration{
		"TRACKS_TTL":       cfg.TracksTTL,
		"BOOKS_TTL":        cfg.BooksTTL,
		"COMMITS_TTL":      cfg.CommitsTTL,
		"PHOTOS_TTL":       cfg.PhotosTTL,
		"UPSTREAM_TIMEOUT": cfg.UpstreamTimeout,
	} {
		if d <= 0 {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("durations must be positive: %v", invalid)
	}

	return cfg, nil
}

// FeedTTLs はフィード種別ごとのキャッシュTTLを返す。
func (c *Config) FeedTTLs() map[model.FeedKind]time.Duration {
	return map[model.FeedKind]time.Duration{
		model.FeedKindTracks:           c.TracksTTL,
		model.FeedKindCurrentlyReading: c.BooksTTL,
		model.FeedKindCommits:          c.CommitsTTL,
		model.FeedKindPhotos:           c.PhotosTTL,
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/urdh/homepage/internal/model"
)

var configEnvVars = []string{
	"SERVER_PORT", "STATIC_DIR", "CORS_ALLOWED_ORIGIN",
	"LASTFM_API_KEY", "LASTFM_USER", "LASTFM_TRACK_LIMIT",
	"GOODREADS_API_KEY", "GOODREADS_USER",
	"GITHUB_USER", "GITHUB_TOKEN", "GITHUB_COMMIT_LIMIT",
	"PHOTOS_URL",
	"TRACKS_TTL", "BOOKS_TTL", "COMMITS_TTL", "PHOTOS_TTL",
	"UPSTREAM_TIMEOUT", "UPSTREAM_MAX_SIZE", "UPSTREAM_ALLOW_PRIVATE",
	"RATE_LIMIT_FEEDS", "LOG_LEVEL",
}

// clearEnvVars は実行環境の値に影響されないよう全設定を空にする。
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Server defaults
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.StaticDir != "public" {
		t.Errorf("StaticDir = %q, want %q", cfg.StaticDir, "public")
	}
	if cfg.CORSAllowedOrigin != "*" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "*")
	}

	// Provider defaults
	if cfg.LastfmAPIKey != "" {
		t.Errorf("LastfmAPIKey = %q, want empty", cfg.LastfmAPIKey)
	}
	if cfg.LastfmUser != "TinyGuy" {
		t.Errorf("LastfmUser = %q, want %q", cfg.LastfmUser, "TinyGuy")
	}
	if cfg.LastfmTrackLimit != 5 {
		t.Errorf("LastfmTrackLimit = %d, want %d", cfg.LastfmTrackLimit, 5)
	}
	if cfg.GoodreadsUser != "27549920" {
		t.Errorf("GoodreadsUser = %q, want %q", cfg.GoodreadsUser, "27549920")
	}
	if cfg.GitHubUser != "urdh" {
		t.Errorf("GitHubUser = %q, want %q", cfg.GitHubUser, "urdh")
	}
	if cfg.GitHubCommitLimit != 5 {
		t.Errorf("GitHubCommitLimit = %d, want %d", cfg.GitHubCommitLimit, 5)
	}
	if cfg.PhotosURL != DefaultPhotosURL {
		t.Errorf("PhotosURL = %q, want %q", cfg.PhotosURL, DefaultPhotosURL)
	}

	// TTL defaults
	if cfg.TracksTTL != 150*time.Second {
		t.Errorf("TracksTTL = %v, want %v", cfg.TracksTTL, 150*time.Second)
	}
	if cfg.BooksTTL != 24*time.Hour {
		t.Errorf("BooksTTL = %v, want %v", cfg.BooksTTL, 24*time.Hour)
	}
	if cfg.CommitsTTL != 5*time.Minute {
		t.Errorf("CommitsTTL = %v, want %v", cfg.CommitsTTL, 5*time.Minute)
	}
	if cfg.PhotosTTL != time.Hour {
		t.Errorf("PhotosTTL = %v, want %v", cfg.PhotosTTL, time.Hour)
	}

	// Upstream defaults
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Errorf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, 5*time.Second)
	}
	if cfg.UpstreamMaxSize != 5242880 {
		t.Errorf("UpstreamMaxSize = %d, want %d", cfg.UpstreamMaxSize, 5242880)
	}
	if cfg.UpstreamAllowPrivate {
		t.Error("UpstreamAllowPrivate = true, want false")
	}
	if cfg.RateLimitFeeds != 60 {
		t.Errorf("RateLimitFeeds = %d, want %d", cfg.RateLimitFeeds, 60)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("STATIC_DIR", "/srv/www")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://sigurdhsson.org")
	t.Setenv("LASTFM_API_KEY", "lastfm-key")
	t.Setenv("LASTFM_TRACK_LIMIT", "8")
	t.Setenv("GITHUB_COMMIT_LIMIT", "3")
	t.Setenv("GOODREADS_API_KEY", "goodreads-key")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("PHOTOS_URL", "https://example.com/feed.xml")
	t.Setenv("TRACKS_TTL", "1m")
	t.Setenv("BOOKS_TTL", "12h")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")
	t.Setenv("UPSTREAM_MAX_SIZE", "1048576")
	t.Setenv("UPSTREAM_ALLOW_PRIVATE", "true")
	t.Setenv("RATE_LIMIT_FEEDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.StaticDir != "/srv/www" {
		t.Errorf("StaticDir = %q, want %q", cfg.StaticDir, "/srv/www")
	}
	if cfg.CORSAllowedOrigin != "https://sigurdhsson.org" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
	if cfg.LastfmAPIKey != "lastfm-key" {
		t.Errorf("LastfmAPIKey = %q, want %q", cfg.LastfmAPIKey, "lastfm-key")
	}
	if cfg.LastfmTrackLimit != 8 {
		t.Errorf("LastfmTrackLimit = %d, want %d", cfg.LastfmTrackLimit, 8)
	}
	if cfg.GitHubCommitLimit != 3 {
		t.Errorf("GitHubCommitLimit = %d, want %d", cfg.GitHubCommitLimit, 3)
	}
	if cfg.GoodreadsAPIKey != "goodreads-key" {
		t.Errorf("GoodreadsAPIKey = %q, want %q", cfg.GoodreadsAPIKey, "goodreads-key")
	}
	if cfg.GitHubToken != "ghp_test" {
		t.Errorf("GitHubToken = %q, want %q", cfg.GitHubToken, "ghp_test")
	}
	if cfg.PhotosURL != "https://example.com/feed.xml" {
		t.Errorf("PhotosURL = %q", cfg.PhotosURL)
	}
	if cfg.TracksTTL != time.Minute {
		t.Errorf("TracksTTL = %v, want %v", cfg.TracksTTL, time.Minute)
	}
	if cfg.BooksTTL != 12*time.Hour {
		t.Errorf("BooksTTL = %v, want %v", cfg.BooksTTL, 12*time.Hour)
	}
	if cfg.UpstreamTimeout != 2*time.Second {
		t.Errorf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, 2*time.Second)
	}
	if cfg.UpstreamMaxSize != 1048576 {
		t.Errorf("UpstreamMaxSize = %d, want %d", cfg.UpstreamMaxSize, 1048576)
	}
	if !cfg.UpstreamAllowPrivate {
		t.Error("UpstreamAllowPrivate = false, want true")
	}
	if cfg.RateLimitFeeds != 30 {
		t.Errorf("RateLimitFeeds = %d, want %d", cfg.RateLimitFeeds, 30)
	}
}

func TestLoad_InvalidValues_FallBackToDefaults(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("LASTFM_TRACK_LIMIT", "ten")
	t.Setenv("GITHUB_COMMIT_LIMIT", "0")
	t.Setenv("TRACKS_TTL", "soon")
	t.Setenv("UPSTREAM_MAX_SIZE", "-1")
	t.Setenv("UPSTREAM_ALLOW_PRIVATE", "maybe")
	t.Setenv("RATE_LIMIT_FEEDS", "1.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.LastfmTrackLimit != 5 {
		t.Errorf("LastfmTrackLimit = %d, want %d", cfg.LastfmTrackLimit, 5)
	}
	if cfg.GitHubCommitLimit != 5 {
		t.Errorf("GitHubCommitLimit = %d, want %d", cfg.GitHubCommitLimit, 5)
	}
	if cfg.TracksTTL != 150*time.Second {
		t.Errorf("TracksTTL = %v, want %v", cfg.TracksTTL, 150*time.Second)
	}
	if cfg.UpstreamMaxSize != 5242880 {
		t.Errorf("UpstreamMaxSize = %d, want %d", cfg.UpstreamMaxSize, 5242880)
	}
	if cfg.UpstreamAllowPrivate {
		t.Error("UpstreamAllowPrivate = true, want false")
	}
	if cfg.RateLimitFeeds != 60 {
		t.Errorf("RateLimitFeeds = %d, want %d", cfg.RateLimitFeeds, 60)
	}
}

func TestLoad_NonPositiveDuration_ReturnsError(t *testing.T) {
	for _, key := range []string{"TRACKS_TTL", "BOOKS_TTL", "COMMITS_TTL", "PHOTOS_TTL", "UPSTREAM_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv(key, "0s")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=0s, got nil", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("エラーに %s が含まれない: %v", key, err)
			}
		})
	}
}

func TestConfig_FeedTTLs(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PHOTOS_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ttls := cfg.FeedTTLs()
	if len(ttls) != len(model.AllFeedKinds()) {
		t.Errorf("len(FeedTTLs()) = %d, want %d", len(ttls), len(model.AllFeedKinds()))
	}
	if ttls[model.FeedKindPhotos] != 30*time.Minute {
		t.Errorf("photos TTL = %v, want %v", ttls[model.FeedKindPhotos], 30*time.Minute)
	}
	if ttls[model.FeedKindCurrentlyReading] != 24*time.Hour {
		t.Errorf("currently-reading TTL = %v, want %v", ttls[model.FeedKindCurrentlyReading], 24*time.Hour)
	}
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urdh/homepage/internal/cache"
	"github.com/urdh/homepage/internal/feed"
	"github.com/urdh/homepage/internal/middleware"
	"github.com/urdh/homepage/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// Get はフィードの応答（キャッシュ済みまたは新規取得）を返す。
	Get(ctx context.Context, kind model.FeedKind) (*cache.Entry, error)
	// TTL はフィードのキャッシュ有効期間を返す。
	TTL(kind model.FeedKind) time.Duration
}

// FeedHandler はフィードプロキシのHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// Serve は指定した種類のフィードを返すハンドラーを返す。
// GET /recent-tracks.json など
func (h *FeedHandler) Serve(kind model.FeedKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := h.service.Get(r.Context(), kind)
		if err != nil {
			if errors.Is(err, feed.ErrUnknownFeed) {
				middleware.WriteErrorResponse(w, http.StatusNotFound, "Unknown feed: "+string(kind))
				return
			}
			slog.Error("フィードの取得に失敗しました",
				slog.String("feed", string(kind)),
				slog.String("error", err.Error()),
			)
			middleware.WriteInternalServerError(w)
			return
		}

		w.Header().Set("Content-Type", middleware.JSONContentType)
		w.Header().Set("Cache-Control", cacheControl(h.service.TTL(kind)))
		w.WriteHeader(entry.Status)
		w.Write(entry.Body)
	}
}

// cacheControl は共有キャッシュ向けのCache-Controlヘッダー値を返す。
func cacheControl(ttl time.Duration) string {
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate", int64(ttl/time.Second))
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/normalize"
)

const (
	photosProvider    = "photos"
	photosURLEnv      = "PHOTOS_URL"
	photosAcceptTypes = "application/json, application/atom+xml, application/rss+xml;q=0.9, */*;q=0.5"
)

// PhotosConfig は写真ギャラリーアダプターの設定。
type PhotosConfig struct {
	URL string
}

// Photos は写真ギャラリーから最近の写真を取得するアダプター。
// JSON（photos.json）とRSS/Atomフィードの両方に対応する。
type Photos struct {
	cfg     PhotosConfig
	client  *Client
	cleaner normalize.TextCleaner
	parser  *gofeed.Parser
	now     func() time.Time
}

// NewPhotos はPhotosの新しいインスタンスを生成する。
func NewPhotos(cfg PhotosConfig, client *Client, cleaner normalize.TextCleaner) *Photos {
	return &Photos{
		cfg:     cfg,
		client:  client,
		cleaner: cleaner,
		parser:  gofeed.NewParser(),
		now:     time.Now,
	}
}

// Kind はFeedKindPhotosを返す。
func (a *Photos) Kind() model.FeedKind { return model.FeedKindPhotos }

// Provider はプロバイダー名を返す。
func (a *Photos) Provider() string { return photosProvider }

// Fetch は写真一覧を取得してPhotoに正規化する。
func (a *Photos) Fetch(ctx context.Context) model.FetchResult {
	if a.cfg.URL == "" {
		return model.Failed(model.NewNotConfiguredError(photosProvider, photosURLEnv))
	}

	header := http.Header{}
	header.Set("Accept", photosAcceptTypes)

	resp, perr := a.client.Get(ctx, photosProvider, a.cfg.URL, header)
	if perr != nil {
		return model.Failed(perr)
	}

	var (
		photos  []model.Photo
		dropped int
	)
	if isJSON(resp) {
		var records normalize.Records[normalize.PhotoRecord]
		if err := json.Unmarshal(resp.Body, &records); err != nil {
			return model.Failed(model.NewMalformedPayloadError(photosProvider, err))
		}
		photos, dropped = normalize.Photos(records, a.now(), a.cleaner)
	} else {
		feed, err := a.parser.Parse(bytes.NewReader(resp.Body))
		if err != nil {
			return model.Failed(model.NewMalformedPayloadError(photosProvider, err))
		}
		photos, dropped = normalize.PhotosFromFeed(feed, a.now(), a.cleaner)
	}

	result := model.OK(photos)
	result.Dropped = dropped
	return result
}

// isJSON はレスポンスがJSONかどうかをContent-Typeと先頭文字で判定する。
func isJSON(resp *Response) bool {
	if strings.Contains(strings.ToLower(resp.ContentType), "json") {
		return true
	}
	trimmed := bytes.TrimSpace(resp.Body)
	return len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{')
}

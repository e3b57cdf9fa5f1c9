package provider

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"

	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/normalize"
)

const (
	goodreadsProvider       = "goodreads"
	goodreadsAPIKeyEnv      = "GOODREADS_API_KEY"
	defaultGoodreadsBaseURL = "https://www.goodreads.com"
)

// GoodreadsConfig はGoodreadsアダプターの設定。
type GoodreadsConfig struct {
	BaseURL string
	APIKey  string
	User    string
}

// Goodreads は読書中の本を取得するアダプター。
type Goodreads struct {
	cfg    GoodreadsConfig
	client *Client
}

// NewGoodreads はGoodreadsの新しいインスタンスを生成する。
func NewGoodreads(cfg GoodreadsConfig, client *Client) *Goodreads {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGoodreadsBaseURL
	}
	return &Goodreads{cfg: cfg, client: client}
}

// Kind はFeedKindCurrentlyReadingを返す。
func (a *Goodreads) Kind() model.FeedKind { return model.FeedKindCurrentlyReading }

// Provider はプロバイダー名を返す。
func (a *Goodreads) Provider() string { return goodreadsProvider }

// Fetch はユーザー情報（XML）を取得し、更新ストリームから読書中の本を抽出する。
func (a *Goodreads) Fetch(ctx context.Context) model.FetchResult {
	if a.cfg.APIKey == "" {
		return model.Failed(model.NewNotConfiguredError(goodreadsProvider, goodreadsAPIKeyEnv))
	}

	q := url.Values{}
	q.Set("key", a.cfg.APIKey)
	endpoint := a.cfg.BaseURL + "/user/show/" + url.PathEscape(a.cfg.User) + ".xml?" + q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/xml")

	resp, perr := a.client.Get(ctx, goodreadsProvider, endpoint, header)
	if perr != nil {
		return model.Failed(perr)
	}

	var payload normalize.GoodreadsResponse
	if err := xml.Unmarshal(resp.Body, &payload); err != nil {
		return model.Failed(model.NewMalformedPayloadError(goodreadsProvider, err))
	}

	books, dropped := normalize.Books(payload)
	result := model.OK(books)
	result.Dropped = dropped
	return result
}

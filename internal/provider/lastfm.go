package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/urdh/homepage/internal/model"
	"github.com/urdh/homepage/internal/normalize"
)

const (
	lastfmProvider       = "last.fm"
	lastfmAPIKeyEnv      = "LASTFM_API_KEY"
	defaultLastfmBaseURL = "https://ws.audioscrobbler.com"
)

// LastfmConfig はLast.fmアダプターの設定。
type LastfmConfig struct {
	BaseURL string // 空の場合は本番エンドポイント
	APIKey  string
	User    string
	Limit   int
}

// Lastfm は最近再生したトラックを取得するアダプター。
type Lastfm struct {
	cfg    LastfmConfig
	client *Client
	now    func() time.Time
}

// NewLastfm はLastfmの新しいインスタンスを生成する。
func NewLastfm(cfg LastfmConfig, client *Client) *Lastfm {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLastfmBaseURL
	}
	return &Lastfm{cfg: cfg, client: client, now: time.Now}
}

// Kind はFeedKindTracksを返す。
func (a *Lastfm) Kind() model.FeedKind { return model.FeedKindTracks }

// Provider はプロバイダー名を返す。
func (a *Lastfm) Provider() string { return lastfmProvider }

// Fetch はuser.getrecenttracksを呼び出してTrackに正規化する。
func (a *Lastfm) Fetch(ctx context.Context) model.FetchResult {
	if a.cfg.APIKey == "" {
		return model.Failed(model.NewNotConfiguredError(lastfmProvider, lastfmAPIKeyEnv))
	}

	q := url.Values{}
	q.Set("method", "user.getrecenttracks")
	q.Set("user", a.cfg.User)
	q.Set("api_key", a.cfg.APIKey)
	q.Set("format", "json")
	if a.cfg.Limit > 0 {
		q.Set("limit", strconv.Itoa(a.cfg.Limit))
	}

	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, perr := a.client.Get(ctx, lastfmProvider, a.cfg.BaseURL+"/2.0/?"+q.Encode(), header)
	if perr != nil {
		return model.Failed(perr)
	}

	// Last.fmは200でもボディにエラーを返すことがある
	if errCode := gjson.GetBytes(resp.Body, "error"); errCode.Exists() {
		return model.Failed(model.NewUpstreamError(lastfmProvider, resp.StatusCode,
			ExtractErrorMessage(resp.StatusCode, resp.Body)))
	}

	var payload normalize.LastfmRecentTracks
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return model.Failed(model.NewMalformedPayloadError(lastfmProvider, err))
	}

	tracks, dropped := normalize.Tracks(payload, a.now())
	result := model.OK(tracks)
	result.Dropped = dropped
	return result
}

// Package provider は外部サービス（Last.fm、Goodreads、GitHub、写真ギャラリー）を呼び出し、
// レスポンスを正規化したFetchResultを返すアダプターを提供する。
//
// アダプターは再試行を行わない。失敗はプロバイダーのステータスとメッセージを保持したまま
// FetchResultのエラーとして呼び出し元に返す。
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/urdh/homepage/internal/model"
)

const (
	// defaultUserAgent は上流呼び出しで送信するUser-Agent。
	defaultUserAgent = "homepage/1.0 (+https://sigurdhsson.org)"
	// maxMessageLength はテキストボディをエラーメッセージとして使う場合の最大長。
	maxMessageLength = 200
)

// errorMessagePaths はJSONエラーボディからメッセージを探すgjsonパス（優先順）。
// GitHub: message、Last.fm: message、その他: error.message / error。
var errorMessagePaths = []string{"message", "error.message", "error_description", "error"}

// Adapter はプロバイダー1つ分のフェッチ処理。
type Adapter interface {
	// Kind はアダプターが提供するフィードの種類を返す。
	Kind() model.FeedKind
	// Provider はプロバイダー名を返す。
	Provider() string
	// Fetch は上流を1回呼び出し、正規化済みの結果を返す。
	Fetch(ctx context.Context) model.FetchResult
}

// Response は上流呼び出しの成功レスポンス。
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client はアダプター共通のHTTP GET処理。
// タイムアウト、ボディサイズ上限、ステータス分類、エラーメッセージ抽出を行う。
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, timeout time.Duration, maxBodySize int64) *Client {
	return &Client{
		httpClient:  httpClient,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
		userAgent:   defaultUserAgent,
	}
}

// Get はrawURLにGETリクエストを送信する。
// 2xx以外のステータスや通信エラーはUpstreamErrorとして返す。
func (c *Client) Get(ctx context.Context, provider, rawURL string, header http.Header) (*Response, *model.ProviderError) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, model.NewUpstreamError(provider, 0, fmt.Sprintf("invalid request: %v", withoutURL(err)))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// URLにはAPIキーが含まれるため、ログとメッセージには含めない
		msg := withoutURL(err).Error()
		c.logger.Error("上流へのリクエストに失敗しました",
			slog.String("provider", provider),
			slog.String("error", msg),
		)
		return nil, model.NewUpstreamError(provider, 0, msg)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(c.limit(resp.Body))
	if err != nil {
		msg := withoutURL(err).Error()
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("provider", provider),
			slog.String("error", msg),
		)
		return nil, model.NewUpstreamError(provider, resp.StatusCode, msg)
	}
	if c.maxBodySize > 0 && int64(len(body)) > c.maxBodySize {
		return nil, model.NewUpstreamError(provider, resp.StatusCode,
			fmt.Sprintf("response exceeds %d bytes", c.maxBodySize))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ExtractErrorMessage(resp.StatusCode, body)
		c.logger.Error("上流がエラーステータスを返しました",
			slog.String("provider", provider),
			slog.Int("http_status", resp.StatusCode),
			slog.String("error", msg),
		)
		return nil, model.NewUpstreamError(provider, resp.StatusCode, msg)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// limit はボディ読み取りを上限+1バイトまでに制限する。上限超過の判定に1バイト余分に読む。
func (c *Client) limit(r io.Reader) io.Reader {
	if c.maxBodySize <= 0 {
		return r
	}
	return io.LimitReader(r, c.maxBodySize+1)
}

// ExtractErrorMessage はエラーレスポンスのボディからプロバイダーのメッセージを取り出す。
// JSONの場合は既知のフィールドを、テキストの場合は短い本文をそのまま使い、
// どちらもなければHTTPステータスの文言を返す。
func ExtractErrorMessage(statusCode int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if gjson.Valid(text) {
		for _, path := range errorMessagePaths {
			if r := gjson.Get(text, path); r.Type == gjson.String && r.String() != "" {
				return r.String()
			}
		}
	}

	// JSONやHTMLの本文はメッセージとして使わない
	if text != "" && len(text) <= maxMessageLength && !strings.ContainsAny(text[:1], "<{[") {
		return text
	}

	return fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))
}

// withoutURL はurl.ErrorからURLを取り除いた内側のエラーを返す。
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return err
}

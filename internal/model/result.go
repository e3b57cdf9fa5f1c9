package model

import (
	"encoding/json"
	"net/http"
)

// FetchResult はプロバイダー呼び出し1回分の結果。
// 成功（Items）か失敗（Err）のどちらか一方のみを保持し、部分的な結果は持たない。
type FetchResult struct {
	Items []any
	Err   *ProviderError

	// Dropped は必須フィールド欠損により破棄したレコード数。レスポンスには含めない。
	Dropped int
}

// OK は成功結果を生成する。
func OK[T any](items []T) FetchResult {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return FetchResult{Items: out}
}

// Failed は失敗結果を生成する。
func Failed(err *ProviderError) FetchResult {
	return FetchResult{Err: err}
}

// IsOK は成功結果かどうかを返す。
func (r FetchResult) IsOK() bool {
	return r.Err == nil
}

// errorBody は失敗時のレスポンスボディ。
type errorBody struct {
	Error string `json:"error"`
}

// EncodeResult はFetchResultをHTTPステータスとJSONボディに変換する。
// 成功時は200とJSON配列（要素0件でも[]）、失敗時は500と{"error": "..."}を返す。
func EncodeResult(r FetchResult) (int, []byte) {
	if !r.IsOK() {
		body, _ := json.Marshal(errorBody{Error: r.Err.Message})
		return http.StatusInternalServerError, body
	}

	items := r.Items
	if items == nil {
		items = []any{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		body, _ = json.Marshal(errorBody{Error: "Could not encode response: " + err.Error()})
		return http.StatusInternalServerError, body
	}
	return http.StatusOK, body
}

// Package middleware はHTTPミドルウェアとJSONエラーレスポンスの書き込みを提供する。
package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorResponseBody はJSONエンドポイントのエラーレスポンス。
// フィードの失敗応答と同じ{"error": "..."}形式。
type ErrorResponseBody struct {
	Error string `json:"error"`
}

// JSONContentType はJSONレスポンスのContent-Type。
const JSONContentType = "application/json; charset=utf-8"

// WriteErrorResponse は{"error": message}形式でHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", JSONContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{Error: message})
}

// WriteInternalServerError は内部サーバーエラーのレスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error")
}

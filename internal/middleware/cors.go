package middleware

import "net/http"

// feedCORSHeaders はフィードのJSONを別オリジンのページから読むためのヘッダー。
// 読み取り専用なのでメソッドはGET/HEAD/OPTIONSに限り、Allow-Credentialsは付けない。
// ブラウザのスクリプトからもリクエストIDとRetry-Afterを読めるよう公開する。
var feedCORSHeaders = [][2]string{
	{"Access-Control-Allow-Methods", "GET, HEAD, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Access-Control-Expose-Headers", RequestIDHeader + ", Retry-After"},
	{"Access-Control-Max-Age", "86400"},
}

// NewCORSMiddleware はフィードのルート用のCORSミドルウェアを返す。
// allowedOriginが"*"以外ならオリジンごとにキャッシュが分かれるようVary: Originを付ける。
// OPTIONSはプリフライトとして後続に渡さず204で応答する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	varyOrigin := allowedOrigin != "*"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			for _, kv := range feedCORSHeaders {
				h.Set(kv[0], kv[1])
			}
			if varyOrigin {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

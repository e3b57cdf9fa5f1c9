package middleware

import (
	"net/http"
	"strings"
)

// NewMergeSlashesMiddleware はパス中の連続したスラッシュを1つにまとめるミドルウェアを返す。
// chiのmiddleware.CleanPathと違い、末尾のスラッシュや"."要素はそのまま残す。
func NewMergeSlashesMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "//") || strings.Contains(r.URL.RawPath, "//") {
				r2 := r.Clone(r.Context())
				r2.URL.Path = mergeSlashes(r.URL.Path)
				r2.URL.RawPath = mergeSlashes(r.URL.RawPath)
				r = r2
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mergeSlashes(p string) string {
	if p == "" {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMergeSlashesMiddleware(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"//recent-tracks.json", "/recent-tracks.json"},
		{"/skrapport///docs/", "/skrapport/docs/"},
		{"/latexhax/", "/latexhax/"},
		{"/a/./b", "/a/./b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var got string
			handler := NewMergeSlashesMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Path
			}))

			req := httptest.NewRequest(http.MethodGet, "http://example.com"+tt.path, nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("path = %q, want %q", got, tt.want)
			}
		})
	}
}

package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewClientTimeout はタイムアウト設定が反映されることをテストする。
func TestNewClientTimeout(t *testing.T) {
	guard := NewUpstreamGuard(false)
	timeout := 5 * time.Second
	client := guard.NewClient(timeout)
	if client.Timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, client.Timeout)
	}
}

// TestNewClientHasTransport はsafeurlのTransportが設定されていることをテストする。
func TestNewClientHasTransport(t *testing.T) {
	guard := NewUpstreamGuard(false)
	client := guard.NewClient(5 * time.Second)

	if client.Transport == nil {
		t.Fatal("expected custom Transport to be set, got nil")
	}
	if client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport, got http.DefaultTransport")
	}
}

// TestNewClientBlocksLoopback はループバックへのリクエストがブロックされることをテストする。
// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewUpstreamGuard(false).NewClient(5 * time.Second)

	_, err := client.Get(ts.URL)
	if err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

// TestNewClientAllowPrivate は開発用設定でループバックに接続できることをテストする。
func TestNewClientAllowPrivate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewUpstreamGuard(true).NewClient(5 * time.Second)

	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// TestValidateURL はURLの静的検証をテストする。
func TestValidateURL(t *testing.T) {
	guard := NewUpstreamGuard(false)

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://photography.sigurdhsson.org/photos.json", false},
		{"http://ws.audioscrobbler.com/2.0/", false},
		{"", true},
		{"ftp://example.com/photos.json", true},
		{"file:///etc/passwd", true},
		{"https://", true},
		{"http://127.0.0.1/photos.json", true},
		{"http://169.254.169.254/latest/meta-data", true},
		{"http://10.0.0.5/photos.json", true},
		{"http://[::1]/photos.json", true},
		{"http://localhost:8080/photos.json", true},
		{"http://LOCALHOST/photos.json", true},
		{"https://93.184.216.34/photos.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

// TestValidateURL_AllowPrivate は開発用設定でプライベートアドレスが許可されることをテストする。
func TestValidateURL_AllowPrivate(t *testing.T) {
	guard := NewUpstreamGuard(true)

	if err := guard.ValidateURL("http://127.0.0.1:8081/photos.json"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := guard.ValidateURL("gopher://127.0.0.1/"); err == nil {
		t.Error("スキームは常に検証されるべき")
	}
}

package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewSafeClientTimeout はタイムアウト設定が反映されることをテストする。
func TestNewSafeClientTimeout(t *testing.T) {
	guard := NewSSRFGuard()
	timeout := 5 * time.Second
	client := guard.NewSafeClient(timeout)
	if client.Timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, client.Timeout)
	}
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport")
	}
}

// TestNewSafeClientBlocksLoopback はループバックへのリクエストがブロックされることをテストする。
func TestNewSafeClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewSSRFGuard().NewSafeClient(5 * time.Second)
	if _, err := client.Get(ts.URL); err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

// TestValidateURL は外向き通信先URLの静的検証をテストする。
func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "Notion API", url: "https://api.notion.com/v1", wantErr: false},
		{name: "公開ホスト", url: "https://notion-proxy.example.com/v1", wantErr: false},
		{name: "空文字列", url: "", wantErr: true},
		{name: "httpスキーム", url: "http://api.notion.com/v1", wantErr: true},
		{name: "fileスキーム", url: "file:///etc/passwd", wantErr: true},
		{name: "ホストなし", url: "https:///v1", wantErr: true},
		{name: "プライベートIP", url: "https://10.0.0.1/v1", wantErr: true},
		{name: "プライベートIP 192.168", url: "https://192.168.1.100/v1", wantErr: true},
		{name: "ループバック", url: "https://127.0.0.1/v1", wantErr: true},
		{name: "localhost", url: "https://LOCALHOST/v1", wantErr: true},
		{name: "メタデータIP", url: "https://169.254.169.254/latest/meta-data/", wantErr: true},
		{name: "IPv6ループバック", url: "https://[::1]/v1", wantErr: true},
		{name: "ゼロアドレス", url: "https://0.0.0.0/v1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestSSRFGuardInterface(t *testing.T) {
	var _ SSRFGuardService = NewSSRFGuard()
}

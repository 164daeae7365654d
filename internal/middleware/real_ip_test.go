package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestParseTrustedProxies(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "空", in: "", want: nil},
		{name: "単一アドレス", in: "10.0.0.1", want: []string{"10.0.0.1/32"}},
		{name: "CIDRと空白", in: " 10.0.0.0/8 , 192.168.1.7/24 ", want: []string{"10.0.0.0/8", "192.168.1.0/24"}},
		{name: "IPv6", in: "::1", want: []string{"::1/128"}},
		{name: "不正なアドレス", in: "proxy.local", wantErr: true},
		{name: "不正なCIDR", in: "10.0.0.0/40", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTrustedProxies(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTrustedProxies(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTrustedProxies(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("prefix[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name       string
		trusted    []netip.Prefix
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"信頼済みプロキシ経由はヘッダーを採用", trusted, "10.1.2.3:4000", "203.0.113.9", "203.0.113.9"},
		{"信頼外の接続元はヘッダーを無視", trusted, "203.0.113.7:5000", "10.0.0.99", "203.0.113.7:5000"},
		{"信頼済みプロキシ未設定ならヘッダーを無視", nil, "10.1.2.3:4000", "203.0.113.9", "10.1.2.3:4000"},
		{"ヘッダーなしはRemoteAddrのまま", trusted, "10.1.2.3:4000", "", "10.1.2.3:4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := NewRealIPMiddleware(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

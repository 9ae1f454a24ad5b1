package util

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithSecurityHeaders(t *testing.T) {
	h := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w)
	}))

	tests := []struct {
		name     string
		tls      bool
		proto    string
		wantHSTS bool
	}{
		{name: "plain http", wantHSTS: false},
		{name: "forwarded http", proto: "http", wantHSTS: false},
		{name: "direct tls", tls: true, wantHSTS: true},
		{name: "forwarded https from load balancer", proto: " HTTPS ", wantHSTS: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			if tc.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tc.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			for _, kv := range apiSecurityHeaders {
				if got := rec.Header().Get(kv[0]); got != kv[1] {
					t.Fatalf("%s = %q, want %q", kv[0], got, kv[1])
				}
			}
			hsts := rec.Header().Get("Strict-Transport-Security")
			if tc.wantHSTS && hsts != "max-age=31536000; includeSubDomains" {
				t.Fatalf("unexpected HSTS %q", hsts)
			}
			if !tc.wantHSTS && hsts != "" {
				t.Fatalf("did not expect HSTS, got %q", hsts)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Fatalf("handler headers lost: %q", got)
			}
		})
	}
}

func writeTestJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"jobs":[]}`))
}

package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		allowed []string
		origin  string
		method  string
		want    string
		status  int
	}{
		{"wildcard", []string{"*"}, "http://a.test", http.MethodGet, "*", http.StatusOK},
		{"listed origin echoed", []string{"http://app.test"}, "http://app.test", http.MethodGet, "http://app.test", http.StatusOK},
		{"unlisted origin omitted", []string{"http://app.test"}, "http://evil.test", http.MethodGet, "", http.StatusOK},
		{"preflight short-circuits", []string{"*"}, "http://a.test", http.MethodOptions, "*", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/jobs", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			WithCORS(tc.allowed)(next).ServeHTTP(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("allow origin = %q, want %q", got, tc.want)
			}
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

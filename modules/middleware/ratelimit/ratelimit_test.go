package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	rl "remixfs/modules/ratelimit"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestMux(t *testing.T, cfg *RestHTTPConfig) http.Handler {
	t.Helper()
	clk := fixedClock{now: time.Date(2025, 1, 1, 0, 0, 30, 0, time.UTC)}
	factory := rl.SlidingWindowFactory(clk, rl.NewMemoryCounter(clk), "test")
	policy, err := ParsePolicy(factory, cfg, PatternRouteInfo, DefaultKeyStrategies())
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}

	mw := NewRateLimitMiddleware(policy)
	mux := http.NewServeMux()
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
	mux.Handle("GET /v1/workspaces/{ws}", mw(http.HandlerFunc(ok)))
	mux.Handle("GET /healthz", mw(http.HandlerFunc(ok)))
	return mux
}

func do(h http.Handler, target, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RoutePolicyPerWorkspace(t *testing.T) {
	h := newTestMux(t, &RestHTTPConfig{
		AllowIfNoMatch: true,
		Routes: []Route{{
			Pattern: "/v1/workspaces/{ws}",
			EndpointRules: []EndpointRule{{
				Method: "get", Limit: 2, Window: time.Minute, KeyStrategy: WorkspaceKeyStrategy,
			}},
		}},
	})

	for i := range 2 {
		if rec := do(h, "/v1/workspaces/a", "10.0.0.1:1234"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := do(h, "/v1/workspaces/a", "10.0.0.1:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q", rec.Header().Get("X-RateLimit-Limit"))
	}

	if rec := do(h, "/v1/workspaces/b", "10.0.0.1:1234"); rec.Code != http.StatusNoContent {
		t.Fatalf("other workspace: status = %d", rec.Code)
	}
	if rec := do(h, "/healthz", "10.0.0.1:1234"); rec.Code != http.StatusNoContent {
		t.Fatalf("unmatched route: status = %d", rec.Code)
	}
}

func TestRateLimit_DefaultPolicyByRemoteIP(t *testing.T) {
	h := newTestMux(t, &RestHTTPConfig{
		DefaultPolicy: EndpointRule{Limit: 1, Window: time.Minute, KeyStrategy: RemoteIpKeyStrategy},
	})

	if rec := do(h, "/healthz", "10.0.0.1:1234"); rec.Code != http.StatusNoContent {
		t.Fatalf("first: status = %d", rec.Code)
	}
	if rec := do(h, "/healthz", "10.0.0.1:5678"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same host: status = %d, want 429", rec.Code)
	}
	if rec := do(h, "/healthz", "10.0.0.2:1234"); rec.Code != http.StatusNoContent {
		t.Fatalf("other host: status = %d", rec.Code)
	}
}

func TestRemoteIpKeyFunc(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   rl.Key
	}{
		{"socket peer", "", "192.0.2.1:443", "192.0.2.1"},
		{"last forwarded hop", "203.0.113.9, 198.51.100.7", "192.0.2.1:443", "198.51.100.7"},
		{"blank header", " ", "192.0.2.1:443", "192.0.2.1"},
		{"no port", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := RemoteIpKeyFunc(req); got != tt.want {
				t.Errorf("RemoteIpKeyFunc = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePolicy_UnknownKeyStrategy(t *testing.T) {
	_, err := ParsePolicy(nil, &RestHTTPConfig{
		Routes: []Route{{Pattern: "/x", EndpointRules: []EndpointRule{{Method: "GET", KeyStrategy: "cookie"}}}},
	}, PatternRouteInfo, DefaultKeyStrategies())
	if err == nil {
		t.Fatal("expected an error for an unknown key strategy")
	}
}

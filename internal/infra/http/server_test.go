package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/infra/db"

	"github.com/gin-gonic/gin"
)

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:           ":0",
		AppEnv:             "test",
		AuthMode:           config.AuthModeAnonymous,
		SecretHeaderName:   "secret_header",
		SecretHeaderValue:  "expected_value",
		AgeHeaderName:      "age",
		MinimumAge:         18,
		ResultTransformers: []string{"secret_header", "minimum_age"},
		PolicyEngine:       config.PolicyEngineNative,
		ETagSalt:           config.DefaultETagSalt,
		ETagIterations:     10,
		CORSAllowedOrigins: []string{"*"},
	}
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := NewServer(context.Background(), cfg, &db.Store{})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthzOutcomes(t *testing.T) {
	srv := newTestServer(t, nil)
	cases := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{"missing secret", map[string]string{"age": "30"}, http.StatusForbidden, "Authorization failed: Invalid secret header value."},
		{"underage", map[string]string{"secret_header": "expected_value", "age": "12"}, http.StatusForbidden, "Authorization failed: Underage."},
		{"missing age", map[string]string{"secret_header": "expected_value"}, http.StatusForbidden, "Authorization failed: Missing age."},
		{"bad age", map[string]string{"secret_header": "expected_value", "age": "old"}, http.StatusForbidden, "Authorization failed: Incorrect age format."},
		{"healthy", map[string]string{"secret_header": "expected_value", "age": "18"}, http.StatusOK, "Healthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, "/healthz", nil, tc.headers)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if w.Body.String() != tc.body {
				t.Fatalf("expected body %q, got %q", tc.body, w.Body.String())
			}
		})
	}
}

func TestHealthzRequiresAuthenticationWhenEnabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.AuthenticationEnabled = true
		cfg.AuthMode = config.AuthModeHeader
	})
	headers := map[string]string{"secret_header": "expected_value", "age": "40"}

	w := do(t, srv, http.MethodGet, "/healthz", nil, headers)
	if w.Code != http.StatusUnauthorized || w.Body.String() != "Authentication required." {
		t.Fatalf("expected 401, got %d %q", w.Code, w.Body.String())
	}

	headers["Authorization"] = "Bearer anything"
	w = do(t, srv, http.MethodGet, "/healthz", nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %q", w.Code, w.Body.String())
	}
}

func TestHealthzUnmatchedFailureIsBareForbidden(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.ResultTransformers = []string{"minimum_age"}
	})
	w := do(t, srv, http.MethodGet, "/healthz", nil, map[string]string{"age": "30"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}
}

func TestHealthzWithOPAEngine(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.PolicyEngine = config.PolicyEngineOPA
	})
	w := do(t, srv, http.MethodGet, "/healthz", nil, map[string]string{"secret_header": "expected_value", "age": "9"})
	if w.Code != http.StatusForbidden || w.Body.String() != "Authorization failed: Underage." {
		t.Fatalf("expected underage 403, got %d %q", w.Code, w.Body.String())
	}
	w = do(t, srv, http.MethodGet, "/healthz", nil, map[string]string{"secret_header": "expected_value", "age": "21"})
	if w.Code != http.StatusOK || w.Body.String() != "Healthy" {
		t.Fatalf("expected healthy, got %d %q", w.Code, w.Body.String())
	}
}

func TestNewServerRejectsUnknownTransformer(t *testing.T) {
	cfg := testConfig()
	cfg.ResultTransformers = []string{"secret_header", "shoe_size"}
	if _, err := NewServer(context.Background(), cfg, &db.Store{}); err == nil {
		t.Fatalf("expected configuration error")
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/api/products", nil, nil)
	want := map[string]string{
		"Content-Security-Policy": "default-src 'self'",
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "SAMEORIGIN",
		"Permissions-Policy":      permissionsPolicy,
	}
	for name, value := range want {
		if got := w.Header().Get(name); got != value {
			t.Fatalf("%s: expected %q, got %q", name, value, got)
		}
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	srv := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/api/products", nil, map[string]string{"Origin": "http://shop.example"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestEchoDescribesRequest(t *testing.T) {
	srv := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/", nil, map[string]string{"X-Probe": "abc"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Request Method: GET", "Request Scheme: http", "X-Probe: abc", "Response Headers:"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in echo body:\n%s", want, body)
		}
	}
}

func TestRoutesAreCaseInsensitive(t *testing.T) {
	srv := newTestServer(t, nil)
	w := do(t, srv, http.MethodGet, "/API/Products", nil, nil)
	if w.Code != http.StatusMovedPermanently {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/api/products" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimitRequests = 2
		cfg.RateLimitWindowSeconds = 60
		cfg.RateLimitMaxKeys = 100
	})
	for i := 0; i < 2; i++ {
		w := do(t, srv, http.MethodGet, "/api/products", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if w.Header().Get("RateLimit-Limit") != "2" {
			t.Fatalf("expected RateLimit-Limit header")
		}
	}
	w := do(t, srv, http.MethodGet, "/api/products", nil, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "RATE_LIMITED" {
		t.Fatalf("unexpected code %q", resp.Code)
	}

	// health checks sit outside the limited group
	w = do(t, srv, http.MethodGet, "/healthz", nil, map[string]string{"secret_header": "expected_value", "age": "30"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected healthz to bypass rate limit, got %d", w.Code)
	}
}

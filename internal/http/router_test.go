package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"menu-photo-services/internal/auth"
	"menu-photo-services/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const routerSet = `version: 1
identifiers: ["100", "200"]
buckets:
  pizza: { ids: ["100"] }
rules:
  - { bucket: pizza, keywords: [pizza] }
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photoset.yaml")
	if err := os.WriteFile(path, []byte(routerSet), 0o644); err != nil {
		t.Fatalf("write photo set: %v", err)
	}
	hash, err := auth.HashAPIKey("admin-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return config.Config{
		Env:              "production",
		PhotoSetPath:     path,
		AdminAPIKeyHash:  hash,
		MaxFileSizeBytes: 1 << 20,
	}
}

func TestHealth(t *testing.T) {
	router := NewRouter(nil, zap.NewNop(), testConfig(t), nil, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestAdminRoutes(t *testing.T) {
	router := NewRouter(nil, zap.NewNop(), testConfig(t), nil, nil)

	cases := []struct {
		name     string
		method   string
		path     string
		body     string
		key      string
		expected int
	}{
		{name: "photo set without key", method: http.MethodGet, path: "/api/admin/photo-set", expected: http.StatusUnauthorized},
		{name: "photo set", method: http.MethodGet, path: "/api/admin/photo-set", key: "admin-key", expected: http.StatusOK},
		{name: "preview", method: http.MethodPost, path: "/api/admin/photo-assignments/preview", body: `{"items":[{"id":"a","name":"Pizza"}]}`, key: "admin-key", expected: http.StatusOK},
		{name: "mirror without store", method: http.MethodPost, path: "/api/admin/photo-assignments/mirror", body: `{"items":[{"id":"a","name":"Pizza"}]}`, key: "admin-key", expected: http.StatusServiceUnavailable},
		{name: "wrong method", method: http.MethodGet, path: "/api/admin/photo-assignments/preview", key: "admin-key", expected: http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.key != "" {
				req.Header.Set("X-Api-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.expected {
				t.Fatalf("expected %d, got %d: %s", tc.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequestLoggerRecordsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := NewRouter(nil, zap.New(core), testConfig(t), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterField(zap.String("requestId", "req-42")).All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log line with the request id, got %d", len(entries))
	}
	if entries[0].ContextMap()["path"] != "/health" {
		t.Fatalf("unexpected log fields %v", entries[0].ContextMap())
	}
}

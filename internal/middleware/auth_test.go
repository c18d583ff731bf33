package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"menu-photo-services/internal/auth"

	"github.com/google/uuid"
)

func TestAdminAuth(t *testing.T) {
	hash, err := auth.HashAPIKey("key-1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	owner, err := auth.SignAccessToken(auth.Claims{UserID: "1", Role: auth.RoleMerchantOwner}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	customer, err := auth.SignAccessToken(auth.Claims{UserID: "2", Role: auth.RoleCustomer}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name     string
		secret   string
		hash     string
		header   string
		value    string
		expected int
	}{
		{name: "disabled", expected: http.StatusForbidden},
		{name: "missing token", secret: "secret", expected: http.StatusUnauthorized},
		{name: "owner token", secret: "secret", header: "Authorization", value: "Bearer " + owner, expected: http.StatusNoContent},
		{name: "customer token", secret: "secret", header: "Authorization", value: "Bearer " + customer, expected: http.StatusForbidden},
		{name: "api key", hash: hash, header: "X-Api-Key", value: "key-1", expected: http.StatusNoContent},
		{name: "wrong api key", hash: hash, header: "X-Api-Key", value: "key-2", expected: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, ok := GetAuthContext(r.Context()); !ok {
					t.Fatalf("auth context missing")
				}
				w.WriteHeader(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/api/admin/photo-set", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rec := httptest.NewRecorder()
			AdminAuth(tc.secret, tc.hash)(next).ServeHTTP(rec, req)
			if rec.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, rec.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "corr-1" || rec.Header().Get("X-Request-Id") != "corr-1" {
		t.Fatalf("expected correlation id to propagate, got %q", seen)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := rec.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("expected generated uuid, got %q", generated)
	}
	if seen != generated {
		t.Fatalf("context id %q does not match header %q", seen, generated)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 200))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if _, err := uuid.Parse(rec.Header().Get("X-Request-Id")); err != nil {
		t.Fatalf("expected oversized id to be replaced, got %q", rec.Header().Get("X-Request-Id"))
	}
}

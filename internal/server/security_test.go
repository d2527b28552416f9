package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()

	if !cfg.EnableCORS {
		t.Error("EnableCORS should be true by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [\"*\"]", cfg.AllowedOrigins)
	}
	if len(cfg.AllowedMethods) != 2 || cfg.AllowedMethods[0] != http.MethodGet || cfg.AllowedMethods[1] != http.MethodOptions {
		t.Errorf("AllowedMethods = %v, want [GET OPTIONS]", cfg.AllowedMethods)
	}
	if cfg.MaxNValue != 1_000_000_000 {
		t.Errorf("MaxNValue = %d, want %d", cfg.MaxNValue, 1_000_000_000)
	}
	if cfg.MaxBatchCount == 0 || cfg.MaxBatchWork == 0 {
		t.Errorf("batch limits must be set, got count=%d work=%d", cfg.MaxBatchCount, cfg.MaxBatchWork)
	}
}

func TestSecurityMiddleware_SecurityHeaders(t *testing.T) {
	t.Parallel()
	nextCalled := false
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/fibonacci?n=1", http.NoBody))

	tests := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"X-XSS-Protection", "1; mode=block"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
		}
	}
	if !nextCalled {
		t.Error("next handler was not called")
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		config     SecurityConfig
		origin     string
		wantOrigin string
		wantVary   bool
	}{
		{
			name:   "disabled",
			config: SecurityConfig{EnableCORS: false, AllowedOrigins: []string{"*"}},
			origin: "http://example.com",
		},
		{
			name:       "wildcard",
			config:     SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}},
			origin:     "http://example.com",
			wantOrigin: "*",
		},
		{
			name:       "wildcard without origin header",
			config:     SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}},
			wantOrigin: "*",
		},
		{
			name:       "specific origin allowed",
			config:     SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://first.com", "http://second.com"}, AllowedMethods: []string{"GET"}},
			origin:     "http://second.com",
			wantOrigin: "http://second.com",
			wantVary:   true,
		},
		{
			name:   "specific origin refused",
			config: SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://allowed.com"}, AllowedMethods: []string{"GET"}},
			origin: "http://evil.com",
		},
		{
			name:   "no origin header with specific origins",
			config: SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://allowed.com"}, AllowedMethods: []string{"GET"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := SecurityMiddleware(tt.config, func(w http.ResponseWriter, r *http.Request) {})
			req := httptest.NewRequest(http.MethodGet, "/batch", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if got != tt.wantOrigin {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" {
				for _, h := range []string{"Access-Control-Allow-Methods", "Access-Control-Allow-Headers", "Access-Control-Max-Age"} {
					if rec.Header().Get(h) == "" {
						t.Errorf("%s should be set", h)
					}
				}
			}
			if gotVary := rec.Header().Get("Vary") == "Origin"; gotVary != tt.wantVary {
				t.Errorf("Vary: Origin set = %v, want %v", gotVary, tt.wantVary)
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	t.Parallel()
	nextCalled := false
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})
	req := httptest.NewRequest(http.MethodOptions, "/fibonacci", http.NoBody)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if nextCalled {
		t.Error("next handler should not run for a preflight request")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "GET, OPTIONS")
	}
}

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/drug-interactions-api/config"
)

type mockHTTPHandler struct {
	calls map[string]int
}

func newMockHTTPHandler() *mockHTTPHandler {
	return &mockHTTPHandler{calls: make(map[string]int)}
}

func (m *mockHTTPHandler) SearchDrugs(w http.ResponseWriter, r *http.Request) {
	m.calls["search"]++
	w.WriteHeader(http.StatusOK)
}

func (m *mockHTTPHandler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	m.calls["check"]++
	w.WriteHeader(http.StatusOK)
}

func (m *mockHTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	m.calls["health"]++
	w.WriteHeader(http.StatusOK)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8002",
		Address:           "127.0.0.1",
		Env:               config.EnvTest,
		LogLevel:          "error",
		MaxRequestBody:    1024,
		MaxHeaderSize:     4096,
		ClassifierTimeout: time.Second,
	}
}

func TestNewServer(t *testing.T) {
	server := NewServer(testConfig(), newMockHTTPHandler())

	if server.server.Addr != "127.0.0.1:8002" {
		t.Errorf("Expected address 127.0.0.1:8002, got %s", server.server.Addr)
	}
	if server.server.WriteTimeout <= server.config.ClassifierTimeout {
		t.Errorf("Expected write timeout above the classifier timeout, got %s", server.server.WriteTimeout)
	}
	if server.server.MaxHeaderBytes != 4096 {
		t.Errorf("Expected MaxHeaderBytes 4096, got %d", server.server.MaxHeaderBytes)
	}
}

func TestSetupRoutes(t *testing.T) {
	handler := newMockHTTPHandler()
	server := NewServer(testConfig(), handler)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		expected int
		call     string
	}{
		{"search", http.MethodPost, "/search_drugs", `{"query":"war"}`, http.StatusOK, "search"},
		{"check", http.MethodPost, "/check_interactions", `{"drugs":["a","b"]}`, http.StatusOK, "check"},
		{"health", http.MethodGet, "/health", "", http.StatusOK, "health"},
		{"trailing slash", http.MethodGet, "/health/", "", http.StatusOK, "health"},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, ""},
		{"search wrong method", http.MethodGet, "/search_drugs", "", http.StatusMethodNotAllowed, ""},
		{"unknown route", http.MethodGet, "/database", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := handler.calls[tt.call]

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			server.Handler().ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Errorf("Expected status %d for %s %s, got %d", tt.expected, tt.method, tt.path, rr.Code)
			}
			if tt.call != "" && handler.calls[tt.call] != before+1 {
				t.Errorf("Expected %s handler to be called", tt.call)
			}
		})
	}
}

func TestSetupMiddleware(t *testing.T) {
	server := NewServer(testConfig(), newMockHTTPHandler())

	req := httptest.NewRequest(http.MethodPost, "/check_interactions", strings.NewReader(strings.Repeat("x", 2048)))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("Expected rate limit headers to be set")
	}
}

func TestServerLifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "0"
	server := NewServer(cfg, newMockHTTPHandler())

	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("Expected clean shutdown, got %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected Start to return nil after shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after shutdown")
	}
}

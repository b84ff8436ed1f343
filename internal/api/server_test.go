package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/history"
	"github.com/marlinhq/marlin/internal/metrics"
	"github.com/marlinhq/marlin/internal/storage/results"
	"github.com/marlinhq/marlin/internal/strategy"
	"github.com/marlinhq/marlin/internal/strategy/emacross"
)

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	registry := strategy.NewRegistry()
	registry.Register(emacross.New())

	provider := history.NewMemory()
	runner := backtest.NewRunner(provider, registry, nil)

	cfg := Config{
		Host:        "127.0.0.1",
		Port:        0,
		APIKey:      apiKey,
		JobTTL:      time.Hour,
		MaxJobs:     10,
		MetricsPath: "/metrics",
	}
	deps := Deps{
		Runner:     runner,
		Strategies: registry,
		Results:    results.NewMemoryStore(10),
		Metrics:    metrics.NewRegistry(),
	}
	return NewServer(cfg, deps, nil)
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t, "secret")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestServer_AuthRequired(t *testing.T) {
	srv := testServer(t, "secret")

	req := httptest.NewRequest("GET", "/api/strategies", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/strategies", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/strategies", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid key, got %d", w.Code)
	}
}

func TestServer_AuthDisabledWithoutKey(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest("GET", "/api/strategies", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestServer_Strategies(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest("GET", "/api/strategies", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var resp struct {
		Data struct {
			Strategies []struct {
				Name string `json:"name"`
			} `json:"strategies"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Strategies) != 1 || resp.Data.Strategies[0].Name != "ema_crossover" {
		t.Errorf("unexpected strategies: %+v", resp.Data.Strategies)
	}
}

func TestServer_MetricsEndpointOpen(t *testing.T) {
	srv := testServer(t, "secret")

	// No API key needed on the metrics path.
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected runtime metrics in scrape output")
	}
}

func TestServer_UnknownJob(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest("GET", "/api/backtests/no-such-job", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := testServer(t, "")

	req := httptest.NewRequest("DELETE", "/api/strategies", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marlinhq/marlin/internal/api/job"
	"github.com/marlinhq/marlin/internal/api/response"
	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/history"
	"github.com/marlinhq/marlin/internal/indicator"
	"github.com/marlinhq/marlin/internal/storage/results"
	"github.com/marlinhq/marlin/internal/strategy"
)

// trendStrategy enters on bar 5 and exits on bar 10, regardless of price.
type trendStrategy struct{}

func (s *trendStrategy) Name() string        { return "trend" }
func (s *trendStrategy) Description() string { return "test strategy" }
func (s *trendStrategy) DefaultParams() strategy.Params {
	return strategy.Params{ATRPeriod: 2, ATRMultiplier: 1}
}
func (s *trendStrategy) WarmupBars(p strategy.Params) int { return p.ATRPeriod }
func (s *trendStrategy) Evaluate(i int, ind *indicator.Set, p strategy.Params) core.Signal {
	switch i {
	case 5:
		return core.SignalEnterLong
	case 10:
		return core.SignalExit
	}
	return core.SignalHold
}

func testBars(n int) []core.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, n)
	for i := range bars {
		bars[i] = core.Bar{
			Time: base.AddDate(0, 0, i),
			Open: 100, High: 100.5, Low: 99.5, Close: 100,
			Volume: 1e6,
		}
	}
	return bars
}

func newTestHandler(t *testing.T) (*BacktestHandler, *job.Store, results.Store) {
	t.Helper()
	provider := history.NewMemory()
	provider.Load("TEST", testBars(30))

	registry := strategy.NewRegistry()
	registry.Register(&trendStrategy{})

	runner := backtest.NewRunner(provider, registry, nil)
	jobs := job.NewStore(100, time.Hour)
	store := results.NewMemoryStore(100)

	return NewBacktestHandler(jobs, runner, store, nil, nil, nil), jobs, store
}

// waitForJob polls until the job leaves the pending/running states.
func waitForJob(t *testing.T, jobs *job.Store, id string) *job.Job {
	t.Helper()
	for i := 0; i < 100; i++ {
		j, err := jobs.Get(id)
		if err != nil {
			t.Fatalf("job lookup: %v", err)
		}
		if j.Status == job.StatusComplete || j.Status == job.StatusFailed {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func postBacktest(t *testing.T, h *BacktestHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/backtests", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	return w
}

func TestBacktestHandler_Create(t *testing.T) {
	h, jobs, store := newTestHandler(t)

	w := postBacktest(t, h, `{"symbol": "TEST", "strategy": "trend"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	data := resp.Data.(map[string]any)
	jobID, _ := data["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected job_id in response")
	}
	if data["status"] != "pending" {
		t.Errorf("expected pending status, got %v", data["status"])
	}

	j := waitForJob(t, jobs, jobID)
	if j.Status != job.StatusComplete {
		t.Fatalf("expected complete, got %s (%v)", j.Status, j.Error)
	}

	result, ok := j.Result.(*backtest.Result)
	if !ok {
		t.Fatalf("expected *backtest.Result, got %T", j.Result)
	}
	if len(result.Trades) != 1 {
		t.Errorf("expected 1 trade, got %d", len(result.Trades))
	}

	// The finished run lands in the result store too.
	if _, err := store.GetByID(context.Background(), result.RunID); err != nil {
		t.Errorf("result not stored: %v", err)
	}
}

func TestBacktestHandler_Create_MissingFields(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := postBacktest(t, h, `{"symbol": "TEST"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBacktestHandler_Create_BadJSON(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := postBacktest(t, h, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBacktestHandler_Create_BadDate(t *testing.T) {
	h, _, _ := newTestHandler(t)

	w := postBacktest(t, h, `{"symbol": "TEST", "strategy": "trend", "start": "01/02/2024"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBacktestHandler_JobFailsOnUnknownStrategy(t *testing.T) {
	h, jobs, _ := newTestHandler(t)

	w := postBacktest(t, h, `{"symbol": "TEST", "strategy": "nope"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	jobID := resp.Data.(map[string]any)["job_id"].(string)

	j := waitForJob(t, jobs, jobID)
	if j.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", j.Status)
	}
	if j.Error == nil || j.Error.Code != core.ErrUnknownStrategy.Code {
		t.Errorf("expected UNKNOWN_STRATEGY error, got %v", j.Error)
	}
}

func TestBacktestHandler_GetStatus(t *testing.T) {
	h, jobs, _ := newTestHandler(t)

	w := postBacktest(t, h, `{"symbol": "TEST", "strategy": "trend"}`)
	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	jobID := resp.Data.(map[string]any)["job_id"].(string)
	waitForJob(t, jobs, jobID)

	getReq := httptest.NewRequest("GET", "/api/backtests/"+jobID, nil)
	getReq.SetPathValue("id", jobID)
	gw := httptest.NewRecorder()
	h.GetStatus(gw, getReq)

	if gw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", gw.Code)
	}
	var statusResp response.SuccessResponse
	json.Unmarshal(gw.Body.Bytes(), &statusResp)
	data := statusResp.Data.(map[string]any)
	if data["status"] != "complete" {
		t.Errorf("expected complete, got %v", data["status"])
	}
	if data["result"] == nil {
		t.Error("expected result payload on a complete job")
	}
}

func TestBacktestHandler_GetStatus_Unknown(t *testing.T) {
	h, _, _ := newTestHandler(t)

	getReq := httptest.NewRequest("GET", "/api/backtests/missing", nil)
	getReq.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.GetStatus(w, getReq)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

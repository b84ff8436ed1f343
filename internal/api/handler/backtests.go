package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/marlinhq/marlin/internal/api/job"
	"github.com/marlinhq/marlin/internal/api/response"
	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/metrics"
	"github.com/marlinhq/marlin/internal/storage/archive"
	"github.com/marlinhq/marlin/internal/storage/results"
	"github.com/marlinhq/marlin/internal/strategy"
	"go.uber.org/zap"
)

const backtestTimeout = 5 * time.Minute

// BacktestRequest is the request body for starting a backtest. Dates are
// plain YYYY-MM-DD; config and params are partial overrides of the engine
// and strategy defaults. Override fields left at zero stay on their
// defaults, so a request cannot set commission or slippage to exactly
// zero or disable a variant's default holding limit.
type BacktestRequest struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Strategy string          `json:"strategy"`
	Interval core.Interval   `json:"interval,omitempty"`
	Start    string          `json:"start,omitempty"`
	End      string          `json:"end,omitempty"`
	Config   backtest.Config `json:"config"`
	Params   strategy.Params `json:"params"`
}

// BacktestHandler handles backtest API requests.
type BacktestHandler struct {
	jobs     *job.Store
	runner   *backtest.Runner
	store    results.Store
	archiver *archive.Archiver // nil disables archiving
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(
	jobs *job.Store,
	runner *backtest.Runner,
	store results.Store,
	archiver *archive.Archiver,
	reg *metrics.Registry,
	logger *zap.Logger,
) *BacktestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktestHandler{
		jobs:     jobs,
		runner:   runner,
		store:    store,
		archiver: archiver,
		metrics:  reg,
		logger:   logger,
	}
}

// Create starts a new backtest job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if req.Symbol == "" || req.Strategy == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, errors.New("symbol and strategy are required")))
		return
	}

	runReq, err := h.toRunRequest(req)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	j := h.jobs.Create("backtest")

	// Copy values before starting goroutine to avoid race
	jobID := j.ID
	status := j.Status

	go h.run(jobID, runReq)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

func (h *BacktestHandler) toRunRequest(req BacktestRequest) (backtest.Request, error) {
	out := backtest.Request{
		Symbol:   req.Symbol,
		Name:     req.Name,
		Strategy: req.Strategy,
		Interval: req.Interval,
		Config:   req.Config,
		Params:   req.Params,
	}
	if req.Start != "" {
		start, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			return out, err
		}
		out.Config.Start = start
	}
	if req.End != "" {
		end, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			return out, err
		}
		out.Config.End = end
	}
	return out, nil
}

// run executes the backtest and updates job status.
func (h *BacktestHandler) run(jobID string, req backtest.Request) {
	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})
	if h.metrics != nil {
		h.metrics.JobStarted()
		defer h.metrics.JobFinished()
	}

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	started := time.Now()
	result, err := h.runner.Run(ctx, req)
	elapsed := time.Since(started).Seconds()

	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordBacktest(req.Strategy, "error", elapsed)
		}
		h.logger.Warn("backtest job failed",
			zap.String("job_id", jobID),
			zap.String("symbol", req.Symbol),
			zap.Error(err))
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = asCoreError(err)
		})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordBacktest(req.Strategy, "success", elapsed)
	}

	if err := h.store.Save(ctx, result); err != nil {
		h.logger.Warn("saving result", zap.String("run_id", result.RunID), zap.Error(err))
	}
	if h.archiver != nil {
		status := "success"
		if err := h.archiver.SaveResult(ctx, result); err != nil {
			status = "error"
			h.logger.Warn("archiving result", zap.String("run_id", result.RunID), zap.Error(err))
		}
		if h.metrics != nil {
			h.metrics.RecordArchiveWrite(status)
		}
	}

	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = result
	})
}

// GetStatus returns the status of a backtest job.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}

func asCoreError(err error) *core.Error {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr
	}
	return &core.Error{Code: "INTERNAL_ERROR", Message: err.Error()}
}

package results

import (
	"context"
	"time"

	"github.com/marlinhq/marlin/internal/backtest"
)

// Store defines the interface for backtest result persistence.
type Store interface {
	// Save persists a completed result.
	Save(ctx context.Context, result *backtest.Result) error

	// GetByID retrieves a result by its run ID.
	GetByID(ctx context.Context, runID string) (*backtest.Result, error)

	// List retrieves result summaries matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Summary, error)

	// Count returns the number of results matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing results.
type ListFilter struct {
	Symbol   string
	Strategy string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// Summary is the listing view of a result: identity and headline metrics
// without the full equity curve and trade log.
type Summary struct {
	RunID          string    `json:"run_id"`
	Name           string    `json:"name,omitempty"`
	Symbol         string    `json:"symbol"`
	Strategy       string    `json:"strategy"`
	CompletedAt    time.Time `json:"completed_at"`
	TotalReturnPct float64   `json:"total_return_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	TotalTrades    int       `json:"total_trades"`
}

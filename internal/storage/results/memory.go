package results

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/core"
)

// entry pins the save time so listings order newest first even when
// results carry identical date ranges.
type entry struct {
	result  *backtest.Result
	savedAt time.Time
}

// MemoryStore is an in-memory result store with a bounded capacity; the
// oldest results are evicted first.
type MemoryStore struct {
	entries []entry
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		entries: make([]entry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a result to the store.
func (m *MemoryStore) Save(ctx context.Context, result *backtest.Result) error {
	if result == nil || result.RunID == "" {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("result has no run id"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry{result: result, savedAt: time.Now()})

	// Trim if over capacity (remove oldest)
	if len(m.entries) > m.maxSize {
		m.entries = m.entries[len(m.entries)-m.maxSize:]
	}

	return nil
}

// GetByID retrieves a result by run ID.
func (m *MemoryStore) GetByID(ctx context.Context, runID string) (*backtest.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.entries {
		if m.entries[i].result.RunID == runID {
			return m.entries[i].result, nil
		}
	}
	return nil, core.WrapError(core.ErrRunNotFound, fmt.Errorf("run %s", runID))
}

// List returns summaries matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Summary, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.matches(m.entries[i], filter) {
			result = append(result, summarize(m.entries[i]))
		}
	}

	// Apply offset and limit
	if filter.Offset >= len(result) {
		return []Summary{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Count returns the count of matching results.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, e := range m.entries {
		if m.matches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) matches(e entry, filter ListFilter) bool {
	if filter.Symbol != "" && e.result.Symbol != filter.Symbol {
		return false
	}
	if filter.Strategy != "" && e.result.Strategy != filter.Strategy {
		return false
	}
	if !filter.From.IsZero() && e.savedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && e.savedAt.After(filter.To) {
		return false
	}
	return true
}

func summarize(e entry) Summary {
	r := e.result
	return Summary{
		RunID:          r.RunID,
		Name:           r.Name,
		Symbol:         r.Symbol,
		Strategy:       r.Strategy,
		CompletedAt:    e.savedAt,
		TotalReturnPct: r.Metrics.TotalReturnPct,
		MaxDrawdownPct: r.Metrics.MaxDrawdownPct,
		SharpeRatio:    r.Metrics.SharpeRatio,
		TotalTrades:    r.Metrics.TotalTrades,
	}
}

package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marlinhq/marlin/internal/core"
)

// Memory serves bar history from an in-process map. It backs offline runs
// from local fixtures and the test suites.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]core.Bar
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]core.Bar)}
}

// Load replaces the history stored for a symbol.
func (m *Memory) Load(symbol string, bars []core.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[symbol] = bars
}

// FetchHistory returns the loaded bars for the symbol, windowed to
// [start, end] when the bounds are set.
func (m *Memory) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	bars, ok := m.data[symbol]
	m.mu.RUnlock()
	if !ok {
		return nil, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("symbol %s not loaded", symbol))
	}

	out := make([]core.Bar, 0, len(bars))
	for _, b := range bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && b.Time.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

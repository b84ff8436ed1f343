package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/core"
)

// Storage defines the interface for cold/archive storage backends
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

const resultPrefix = "results"

// resultKey is the archive layout: results/<run id>.json
func resultKey(runID string) string {
	return fmt.Sprintf("%s/%s.json", resultPrefix, runID)
}

// Archiver persists full backtest results as JSON documents on a Storage
// backend, keyed by run ID. It complements the bounded in-memory store:
// evicted runs remain retrievable from the archive.
type Archiver struct {
	storage Storage
}

// NewArchiver creates an archiver on the given backend.
func NewArchiver(storage Storage) *Archiver {
	return &Archiver{storage: storage}
}

// SaveResult writes one result document.
func (a *Archiver) SaveResult(ctx context.Context, result *backtest.Result) error {
	if result == nil || result.RunID == "" {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("result has no run id"))
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	if err := a.storage.Write(ctx, resultKey(result.RunID), data); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// LoadResult reads one result document back.
func (a *Archiver) LoadResult(ctx context.Context, runID string) (*backtest.Result, error) {
	ok, err := a.storage.Exists(ctx, resultKey(runID))
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if !ok {
		return nil, core.WrapError(core.ErrRunNotFound, fmt.Errorf("run %s not archived", runID))
	}

	data, err := a.storage.Read(ctx, resultKey(runID))
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	var result backtest.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &result, nil
}

// ListRuns returns the run IDs present in the archive.
func (a *Archiver) ListRuns(ctx context.Context) ([]string, error) {
	paths, err := a.storage.List(ctx, resultPrefix)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	runs := make([]string, 0, len(paths))
	for _, p := range paths {
		base := path.Base(p)
		if !strings.HasSuffix(base, ".json") {
			continue
		}
		runs = append(runs, strings.TrimSuffix(base, ".json"))
	}
	return runs, nil
}

// DeleteRun removes one archived result.
func (a *Archiver) DeleteRun(ctx context.Context, runID string) error {
	if err := a.storage.Delete(ctx, resultKey(runID)); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

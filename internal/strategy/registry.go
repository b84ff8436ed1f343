package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/marlinhq/marlin/internal/core"
	"go.uber.org/zap"
)

// Registry maps strategy identifiers to variants. Unknown identifiers are a
// configuration error, never a silent fallback.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     *zap.Logger
}

// NewRegistry creates a new strategy registry
func NewRegistry(logger ...*zap.Logger) *Registry {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Registry{
		strategies: make(map[string]Strategy),
		logger:     l,
	}
}

// Register adds a strategy to the registry
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
	r.logger.Debug("strategy registered", zap.String("strategy", s.Name()))
}

// Get retrieves a strategy by identifier. Unknown identifiers return
// core.ErrUnknownStrategy.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	if !ok {
		return nil, core.WrapError(core.ErrUnknownStrategy, fmt.Errorf("strategy %q", name))
	}
	return s, nil
}

// Info describes a registered strategy for API listings.
type Info struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	DefaultParams Params `json:"default_params"`
}

// List returns all registered strategies sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.strategies))
	for _, s := range r.strategies {
		result = append(result, Info{
			Name:          s.Name(),
			Description:   s.Description(),
			DefaultParams: s.DefaultParams(),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meenmo/multicurve/rates"
)

// historyLimit bounds the run history kept in memory.
const historyLimit = 64

// RunRecord is the outcome of one calibration run.
type RunRecord struct {
	ID           uuid.UUID     `json:"id"`
	Group        string        `json:"group"`
	Start        time.Time     `json:"start"`
	Duration     time.Duration `json:"duration"`
	Iterations   int           `json:"iterations"`
	ResidualNorm float64       `json:"residual_norm"`
	Err          string        `json:"error,omitempty"`
}

// Registry holds the latest calibrated provider per group and a bounded
// history of runs. A failed run is recorded but leaves the last good
// provider in place, so queries keep working on stale curves. Safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*rates.Provider
	history   []RunRecord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*rates.Provider)}
}

// Publish records a run and, when the provider is non-nil, installs it
// as the group's latest.
func (r *Registry) Publish(group string, p *rates.Provider, rec RunRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p != nil {
		r.providers[group] = p
	}
	r.history = append(r.history, rec)
	if len(r.history) > historyLimit {
		r.history = r.history[len(r.history)-historyLimit:]
	}
}

// Provider returns the latest provider published for the group.
func (r *Registry) Provider(group string) (*rates.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[group]
	return p, ok
}

// Groups returns the group names with a published provider, sorted.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make([]string, 0, len(r.providers))
	for g := range r.providers {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// History returns a copy of the run records, oldest first.
func (r *Registry) History() []RunRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RunRecord, len(r.history))
	copy(out, r.history)
	return out
}

// LastRun returns the most recent run record.
func (r *Registry) LastRun() (RunRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.history) == 0 {
		return RunRecord{}, false
	}
	return r.history[len(r.history)-1], true
}

package digest_run

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps runs in process when no database is configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs []Run
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make([]Run, 0)}
}

func (r *MemoryRepository) Save(ctx context.Context, run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	sort.SliceStable(r.runs, func(i, j int) bool {
		return r.runs[i].StartedAt.After(r.runs[j].StartedAt)
	})
	return nil
}

func (r *MemoryRepository) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	return append([]Run(nil), r.runs[:limit]...), nil
}

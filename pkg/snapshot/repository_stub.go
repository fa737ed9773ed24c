package snapshot

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
)

type storedSnapshot struct {
	id      uuid.UUID
	dataset attendance.Dataset
}

// MemoryRepository keeps snapshots in process. It backs the cache when no
// database is configured and doubles as the test stub.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[period.Period][]storedSnapshot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: make(map[period.Period][]storedSnapshot)}
}

func (r *MemoryRepository) Save(ctx context.Context, dataset attendance.Dataset) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	stored := append(r.snapshots[dataset.Period], storedSnapshot{id: id, dataset: dataset})
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].dataset.FetchedAt.After(stored[j].dataset.FetchedAt)
	})
	r.snapshots[dataset.Period] = stored
	return id, nil
}

func (r *MemoryRepository) Latest(ctx context.Context, p period.Period) (attendance.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.snapshots[p]
	if len(stored) == 0 {
		return attendance.Dataset{}, ErrSnapshotNotFound
	}
	return stored[0].dataset, nil
}

func (r *MemoryRepository) Prune(ctx context.Context, p period.Period, keep int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.snapshots[p]
	if len(stored) <= keep {
		return 0, nil
	}
	r.snapshots[p] = stored[:keep]
	return len(stored) - keep, nil
}

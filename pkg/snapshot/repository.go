package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
)

var ErrSnapshotNotFound = errors.New("no snapshot stored for period")

// Repository keeps the last fetched datasets so an analysis can still be
// served while the attendance API is unreachable.
type Repository interface {
	Save(ctx context.Context, dataset attendance.Dataset) (uuid.UUID, error)
	// Latest returns the most recently fetched dataset of p.
	Latest(ctx context.Context, p period.Period) (attendance.Dataset, error)
	// Prune keeps only the newest keep snapshots of p.
	Prune(ctx context.Context, p period.Period, keep int) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Save(ctx context.Context, dataset attendance.Dataset) (uuid.UUID, error) {
	payload, err := json.Marshal(dataset)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	id := uuid.New()
	query := `INSERT INTO dataset_snapshot (id, period_year, period_month, fetched_at, dataset)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.Exec(ctx, query, id, dataset.Period.Year, dataset.Period.Month, dataset.FetchedAt, payload)
	if err != nil {
		log.Errorf("failed to store snapshot of %s: %v", dataset.Period, err)
		return uuid.Nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) Latest(ctx context.Context, p period.Period) (attendance.Dataset, error) {
	query := `SELECT dataset FROM dataset_snapshot
			  WHERE period_year = $1 AND period_month = $2
			  ORDER BY fetched_at DESC
			  LIMIT 1`
	var payload []byte
	err := r.db.QueryRow(ctx, query, p.Year, p.Month).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Dataset{}, ErrSnapshotNotFound
		}
		return attendance.Dataset{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	var dataset attendance.Dataset
	if err := json.Unmarshal(payload, &dataset); err != nil {
		return attendance.Dataset{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return dataset, nil
}

func (r *RepositoryImpl) Prune(ctx context.Context, p period.Period, keep int) (int, error) {
	query := `DELETE FROM dataset_snapshot
			  WHERE period_year = $1 AND period_month = $2
			    AND id NOT IN (SELECT id FROM dataset_snapshot
			                   WHERE period_year = $1 AND period_month = $2
			                   ORDER BY fetched_at DESC
			                   LIMIT $3)`
	tag, err := r.db.Exec(ctx, query, p.Year, p.Month, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

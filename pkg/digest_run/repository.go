package digest_run

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Save(ctx context.Context, run Run) error
	// ListRecent returns at most limit runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Save(ctx context.Context, run Run) error {
	recipients := run.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	var runError *string
	if run.Error != "" {
		runError = &run.Error
	}
	query := `INSERT INTO digest_run (id, period_year, period_month, subject, recipients, alert_count, status, error, started_at, finished_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query, run.Id, run.Period.Year, run.Period.Month, run.Subject, recipients,
		run.AlertCount, string(run.Status), runError, run.StartedAt, run.FinishedAt)
	if err != nil {
		log.Errorf("failed to store digest run %s: %v", run.Id, err)
		return fmt.Errorf("failed to store digest run: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, period_year, period_month, subject, recipients, alert_count, status, error, started_at, finished_at
			  FROM digest_run
			  ORDER BY started_at DESC
			  LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list digest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var status string
		var runError *string
		err := rows.Scan(&run.Id, &run.Period.Year, &run.Period.Month, &run.Subject, &run.Recipients,
			&run.AlertCount, &status, &runError, &run.StartedAt, &run.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to read digest run: %w", err)
		}
		run.Status = Status(status)
		if runError != nil {
			run.Error = *runError
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list digest runs: %w", err)
	}
	return runs, nil
}

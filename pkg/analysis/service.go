package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kotlens/kotlens/internal/event_bus"
	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
	"github.com/kotlens/kotlens/pkg/snapshot"
	log "github.com/sirupsen/logrus"
)

// Report is an analysis together with where its data came from.
type Report struct {
	Result
	Source       attendance.Source
	FetchedAt    time.Time
	FailedMonths []string
}

type DatasetFetcher interface {
	FetchDataset(ctx context.Context, p period.Period) (attendance.Dataset, error)
}

type Service interface {
	Analyze(ctx context.Context, p period.Period) (Report, error)
	// CurrentPeriod is the month the clock is in.
	CurrentPeriod() period.Period
}

type ServiceImpl struct {
	fetcher   DatasetFetcher
	snapshots snapshot.Repository
	bus       *event_bus.EventBus
	clock     utils.Clock
}

func NewService(fetcher DatasetFetcher, snapshots snapshot.Repository, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		fetcher:   fetcher,
		snapshots: snapshots,
		bus:       bus,
		clock:     clock,
	}
}

func (s *ServiceImpl) CurrentPeriod() period.Period {
	return period.FromTime(s.clock.Now())
}

// Analyze fetches the live dataset for p and analyzes it. When the attendance
// API fails, the latest stored snapshot of p is analyzed instead.
func (s *ServiceImpl) Analyze(ctx context.Context, p period.Period) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}

	dataset, err := s.fetcher.FetchDataset(ctx, p)
	if err != nil {
		cached, cacheErr := s.snapshots.Latest(ctx, p)
		if cacheErr != nil {
			if !errors.Is(cacheErr, snapshot.ErrSnapshotNotFound) {
				log.Warnf("Failed to load snapshot of %s: %v", p, cacheErr)
			}
			return Report{}, fmt.Errorf("failed to fetch attendance data for %s: %w", p, err)
		}
		log.Warnf("Attendance API unavailable (%v), using snapshot of %s fetched at %s", err, p, cached.FetchedAt.Format(time.RFC3339))
		dataset = cached
		dataset.Source = attendance.SourceCache
	} else {
		s.publishSnapshot(ctx, dataset)
	}

	result, err := Analyze(dataset.Employees, dataset.Records, p, s.today(p))
	if err != nil {
		return Report{}, err
	}
	log.Debugf("Analysis of %s: %d alerts, %d safe", p, len(result.Compliance.Alerts), result.Compliance.SafeCount)

	return Report{
		Result:       result,
		Source:       dataset.Source,
		FetchedAt:    dataset.FetchedAt,
		FailedMonths: dataset.FailedMonths,
	}, nil
}

// today is the clock's date for the running month and the mid-month
// reference date for any other period.
func (s *ServiceImpl) today(p period.Period) time.Time {
	now := s.clock.Now()
	if period.FromTime(now) == p {
		return now
	}
	return p.ReferenceDate(s.clock.Location())
}

func (s *ServiceImpl) publishSnapshot(ctx context.Context, dataset attendance.Dataset) {
	if s.bus == nil {
		return
	}
	event := event_bus.NewEvent(ctx, event_bus.SnapshotFetchedType, event_bus.SnapshotFetched{Dataset: dataset})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("Failed to publish snapshot of %s: %v", dataset.Period, err)
	}
}

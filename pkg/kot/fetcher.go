package kot

import (
	"context"
	"fmt"

	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentRequests = 4

// Fetcher collects everything an analysis of one period needs from the API.
type Fetcher struct {
	client Client
	clock  utils.Clock
}

func NewFetcher(client Client, clock utils.Clock) *Fetcher {
	return &Fetcher{client: client, clock: clock}
}

// FetchDataset loads the employee list and the monthly workings of every month
// in p.MonthsToFetch() concurrently. A failed month is logged and contributes
// no records; a failed employee list fails the whole fetch.
func (f *Fetcher) FetchDataset(ctx context.Context, p period.Period) (attendance.Dataset, error) {
	months := p.MonthsToFetch()
	perMonth := make([][]attendance.RawMonthlyRecord, len(months))
	failed := make([]bool, len(months))
	var employees []attendance.Employee

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRequests)

	g.Go(func() error {
		fetched, err := f.client.FetchEmployees(gCtx)
		if err != nil {
			return fmt.Errorf("failed to fetch employees: %w", err)
		}
		employees = fetched
		return nil
	})

	for i, m := range months {
		g.Go(func() error {
			records, err := f.client.FetchMonthlyWorkings(gCtx, m.Year, m.Month)
			if err != nil {
				log.Warnf("Failed to fetch monthly workings for %s, continuing without them: %v", m, err)
				failed[i] = true
				return nil
			}
			perMonth[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Errorf("Failed to fetch dataset for %s: %v", p, err)
		return attendance.Dataset{}, err
	}

	dataset := attendance.Dataset{
		Period:    p,
		Employees: employees,
		Records:   make([]attendance.RawMonthlyRecord, 0),
		FetchedAt: f.clock.Now(),
		Source:    attendance.SourceLive,
	}
	for i, records := range perMonth {
		dataset.Records = append(dataset.Records, records...)
		if failed[i] {
			dataset.FailedMonths = append(dataset.FailedMonths, months[i].Key())
		}
	}
	log.Debugf("Fetched dataset for %s: %d employees, %d records over %d months",
		p, len(dataset.Employees), len(dataset.Records), len(months))
	return dataset, nil
}

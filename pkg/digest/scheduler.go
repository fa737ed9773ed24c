package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const runTimeout = 5 * time.Minute

// Scheduler sends the digest on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	service  Service
	spec     string
	location *time.Location
}

// NewScheduler validates spec, a standard five field cron expression evaluated
// in loc.
func NewScheduler(spec string, loc *time.Location, service Service) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &Scheduler{cron: c, service: service, spec: spec, location: loc}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if entries := s.cron.Entries(); len(entries) > 0 {
		log.Infof("Digest scheduled with %q, next run at %s", s.spec, entries[0].Next.Format(time.RFC3339))
	}
}

// Stop waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Digest scheduler stopped")
}

// Next is the time of the next scheduled run after from, evaluated in the
// scheduler's location.
func (s *Scheduler) Next(from time.Time) time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(from.In(s.location))
}

func (s *Scheduler) run() {
	log.Info("Scheduled digest triggered")
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := s.service.SendReport(ctx); err != nil {
		log.Errorf("Scheduled digest failed: %v", err)
	}
}

package digest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kotlens/kotlens/internal/event_bus"
	"github.com/kotlens/kotlens/internal/utils"
	"github.com/kotlens/kotlens/pkg/analysis"
	"github.com/kotlens/kotlens/pkg/digest_run"
	log "github.com/sirupsen/logrus"
)

var ErrDigestFailed = errors.New("digest could not be sent")

type Service interface {
	// SendReport analyzes the current month and mails the digest.
	SendReport(ctx context.Context) (digest_run.Run, error)
}

type ServiceImpl struct {
	analysis   analysis.Service
	renderer   Renderer
	sender     Sender
	bus        *event_bus.EventBus
	clock      utils.Clock
	from       string
	recipients []string
}

func NewService(
	analysisService analysis.Service,
	renderer Renderer,
	sender Sender,
	bus *event_bus.EventBus,
	clock utils.Clock,
	from string,
	recipients []string,
) *ServiceImpl {
	return &ServiceImpl{
		analysis:   analysisService,
		renderer:   renderer,
		sender:     sender,
		bus:        bus,
		clock:      clock,
		from:       from,
		recipients: recipients,
	}
}

func (s *ServiceImpl) SendReport(ctx context.Context) (digest_run.Run, error) {
	p := s.analysis.CurrentPeriod()
	run := digest_run.Run{
		Id:         uuid.New(),
		Period:     p,
		Recipients: s.recipients,
		StartedAt:  s.clock.Now(),
	}
	log.Infof("Generating compliance digest %s for %s", run.Id, p)

	err := s.send(ctx, &run)
	run.FinishedAt = s.clock.Now()
	if err != nil {
		run.Status = digest_run.StatusFailed
		run.Error = err.Error()
		log.Errorf("Digest %s for %s failed: %v", run.Id, p, err)
	}
	s.publish(ctx, run)

	if err != nil {
		return run, fmt.Errorf("%w: %w", ErrDigestFailed, err)
	}
	return run, nil
}

func (s *ServiceImpl) send(ctx context.Context, run *digest_run.Run) error {
	report, err := s.analysis.Analyze(ctx, run.Period)
	if err != nil {
		return err
	}
	d := Build(report, s.clock.Now())
	run.Subject = d.Subject
	run.AlertCount = d.AlertCount()

	html, err := s.renderer.Render(d)
	if err != nil {
		return err
	}

	if len(s.recipients) == 0 {
		log.Infof("No digest recipients configured, skipping send of %q", d.Subject)
		run.Status = digest_run.StatusSkipped
		return nil
	}

	err = s.sender.Send(ctx, Message{
		From:    s.from,
		To:      s.recipients,
		Subject: d.Subject,
		HTML:    html,
		Date:    s.clock.Now(),
	})
	if err != nil {
		return err
	}
	run.Status = digest_run.StatusSent
	log.Infof("Digest %q sent to %v", d.Subject, s.recipients)
	return nil
}

func (s *ServiceImpl) publish(ctx context.Context, run digest_run.Run) {
	if s.bus == nil {
		return
	}
	event := event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.DigestSentType, event_bus.DigestSent{
		RunId:      run.Id,
		Period:     run.Period,
		Subject:    run.Subject,
		Recipients: run.Recipients,
		AlertCount: run.AlertCount,
		Status:     string(run.Status),
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("Failed to record digest run %s: %v", run.Id, err)
	}
}

package digest_run

import (
	"github.com/kotlens/kotlens/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Subscribe records every finished digest announced on the bus.
func Subscribe(bus *event_bus.EventBus, repo Repository) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.DigestSentType,
		func(e event_bus.EventT[event_bus.DigestSent]) error {
			run := Run{
				Id:         e.Data.RunId,
				Period:     e.Data.Period,
				Subject:    e.Data.Subject,
				Recipients: e.Data.Recipients,
				AlertCount: e.Data.AlertCount,
				Status:     Status(e.Data.Status),
				Error:      e.Data.Error,
				StartedAt:  e.Data.StartedAt,
				FinishedAt: e.Data.FinishedAt,
			}
			if err := repo.Save(e.Context(), run); err != nil {
				return err
			}
			log.Debugf("Recorded digest run %s (%s)", run.Id, run.Status)
			return nil
		})
}

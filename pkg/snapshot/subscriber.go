package snapshot

import (
	"github.com/kotlens/kotlens/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// keepPerPeriod bounds how many snapshots of one period are retained.
const keepPerPeriod = 5

// Subscribe persists every live dataset announced on the bus.
func Subscribe(bus *event_bus.EventBus, repo Repository) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.SnapshotFetchedType,
		func(e event_bus.EventT[event_bus.SnapshotFetched]) error {
			ctx := e.Context()
			dataset := e.Data.Dataset
			id, err := repo.Save(ctx, dataset)
			if err != nil {
				return err
			}
			log.Debugf("Stored snapshot %s of %s (%d records)", id, dataset.Period, len(dataset.Records))
			if pruned, err := repo.Prune(ctx, dataset.Period, keepPerPeriod); err != nil {
				log.Warnf("Failed to prune snapshots of %s: %v", dataset.Period, err)
			} else if pruned > 0 {
				log.Debugf("Pruned %d old snapshots of %s", pruned, dataset.Period)
			}
			return nil
		})
}

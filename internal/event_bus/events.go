package event_bus

import (
	"time"

	"github.com/google/uuid"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
)

const (
	SnapshotFetchedType EventType = "snapshot.fetched"
	DigestSentType      EventType = "digest.sent"
)

// SnapshotFetched is raised after a live dataset was fetched for a period.
type SnapshotFetched struct {
	Dataset attendance.Dataset
}

// DigestSent is raised after a digest run finished, whether or not mail went out.
type DigestSent struct {
	RunId      uuid.UUID
	Period     period.Period
	Subject    string
	Recipients []string
	AlertCount int
	// Status is one of "sent", "skipped" or "failed".
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

package digest_run

import (
	"time"

	"github.com/google/uuid"
	"github.com/kotlens/kotlens/pkg/period"
)

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Run is one attempt to send the compliance digest.
type Run struct {
	Id         uuid.UUID
	Period     period.Period
	Subject    string
	Recipients []string
	AlertCount int
	Status     Status
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type RunDTO struct {
	Id         string        `json:"id"`
	Period     period.Period `json:"period"`
	Subject    string        `json:"subject"`
	Recipients []string      `json:"recipients"`
	AlertCount int           `json:"alertCount"`
	Status     Status        `json:"status"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

func RunToDTO(run Run) RunDTO {
	recipients := run.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	return RunDTO{
		Id:         run.Id.String(),
		Period:     run.Period,
		Subject:    run.Subject,
		Recipients: recipients,
		AlertCount: run.AlertCount,
		Status:     run.Status,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

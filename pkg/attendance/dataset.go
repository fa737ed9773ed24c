package attendance

import (
	"time"

	"github.com/kotlens/kotlens/pkg/period"
)

// Source tells where a dataset came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

// Dataset is the raw input of one analysis run: the employee list and every
// monthly record fetched for the months of the period.
type Dataset struct {
	Period    period.Period      `json:"period"`
	Employees []Employee         `json:"employees"`
	Records   []RawMonthlyRecord `json:"records"`
	// FailedMonths lists the months whose records could not be fetched.
	FailedMonths []string  `json:"failedMonths,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
	Source       Source    `json:"source"`
}

package analysis

import (
	"fmt"
	"time"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/leave"
	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
)

// Result is everything the dashboard and the digest show for one period.
type Result struct {
	Period             period.Period
	FiscalYear         period.FiscalYear
	MonthsRemaining    int
	OvertimeByEmployee []overtime.Profile
	// Evaluations holds every employee's compliance result, most severe first.
	Evaluations     []overtime.Result
	Compliance      overtime.Report
	PaidLeave       []leave.PaidLeaveStatus
	PaidLeaveAlerts []leave.PaidLeaveStatus
	CompLeaveAlerts []leave.CompLeaveBalance
	CompanyAverages CompanyAverages
	CurrentMonth    []CurrentMonthEntry
	Ranking         []CurrentMonthEntry
	Divisions       []DivisionSummary
	Trend           Trend
}

// Analyze runs the whole compliance engine over raw provider data. It never
// mutates its inputs, and records of employees missing from the list are
// ignored. today drives compensatory-leave expiry.
func Analyze(employees []attendance.Employee, records []attendance.RawMonthlyRecord, p period.Period, today time.Time) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("failed to analyze: %w", err)
	}

	canonical := attendance.Dedupe(records)
	log.Debugf("Analyzing %s: %d raw records, %d canonical, %d employees", p, len(records), canonical.Len(), len(employees))
	canonicalRecords := canonical.Records()
	directory := attendance.NewDirectory(employees)

	profiles := overtime.Aggregate(canonicalRecords, directory, p)
	results := overtime.Evaluate(profiles, p)

	paidLeave := leave.TrackPaidLeave(canonicalRecords, employees, p)
	currentMonth := currentMonthOvertime(canonical, directory, p)

	return Result{
		Period:             p,
		FiscalYear:         p.FiscalYear(),
		MonthsRemaining:    p.MonthsRemaining(),
		OvertimeByEmployee: profiles,
		Evaluations:        results,
		Compliance:         overtime.NewReport(results),
		PaidLeave:          paidLeave,
		PaidLeaveAlerts:    leave.PaidLeaveAlerts(paidLeave),
		CompLeaveAlerts:    leave.TrackCompLeave(canonicalRecords, employees, today),
		CompanyAverages:    companyAverages(currentMonth, paidLeave),
		CurrentMonth:       currentMonth,
		Ranking:            ranking(currentMonth),
		Divisions:          divisionSummaries(canonicalRecords, directory, p),
		Trend:              overtimeTrend(canonical, directory, p),
	}, nil
}

// HasAlerts reports whether any employee is above the safe tier.
func (r Result) HasAlerts() bool {
	return len(r.Compliance.Alerts) > 0
}

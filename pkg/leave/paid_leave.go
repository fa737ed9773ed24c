package leave

import (
	"sort"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
)

// MinimumPaidLeaveDays is the statutory number of paid leave days an employee
// must take per fiscal year.
const MinimumPaidLeaveDays = 5.0

// AnnualGrantDays is the grant used for the utilization rate.
const AnnualGrantDays = 20.0

const atRiskMonthsRemaining = 2

type Severity string

const (
	Compliant Severity = "compliant"
	Behind    Severity = "behind"
	AtRisk    Severity = "at_risk"
)

type PaidLeaveStatus struct {
	Employee        attendance.Employee
	UsedDays        float64
	RemainingNeeded float64
	MonthsRemaining int
	PacePerMonth    float64
	Severity        Severity
}

func (s PaidLeaveStatus) Flagged() bool {
	return s.UsedDays < MinimumPaidLeaveDays
}

// TrackPaidLeave sums fiscal-year paid leave for every employee in the list,
// including employees without any record.
func TrackPaidLeave(records []attendance.RawMonthlyRecord, employees []attendance.Employee, p period.Period) []PaidLeaveStatus {
	dir := attendance.NewDirectory(employees)
	used := make(map[string]float64, len(employees))
	for _, r := range records {
		if !p.Contains(r.Year, r.Month) {
			continue
		}
		if _, ok := dir.Lookup(r.EmployeeKey); !ok {
			continue
		}
		used[r.EmployeeKey] += r.LeaveDays(attendance.PaidLeave)
	}

	monthsRemaining := p.MonthsRemaining()
	statuses := make([]PaidLeaveStatus, 0, len(dir))
	for _, emp := range dir.Sorted() {
		statuses = append(statuses, newPaidLeaveStatus(emp, used[emp.Key], monthsRemaining))
	}
	return statuses
}

func newPaidLeaveStatus(emp attendance.Employee, used float64, monthsRemaining int) PaidLeaveStatus {
	remaining := max(0, MinimumPaidLeaveDays-used)
	pace := remaining
	if monthsRemaining > 0 {
		pace = remaining / float64(monthsRemaining)
	}

	severity := Compliant
	if used < MinimumPaidLeaveDays {
		severity = Behind
		if monthsRemaining <= atRiskMonthsRemaining {
			severity = AtRisk
		}
	}
	return PaidLeaveStatus{
		Employee:        emp,
		UsedDays:        used,
		RemainingNeeded: remaining,
		MonthsRemaining: monthsRemaining,
		PacePerMonth:    pace,
		Severity:        severity,
	}
}

// PaidLeaveAlerts keeps the employees below the minimum, fewest days first.
func PaidLeaveAlerts(statuses []PaidLeaveStatus) []PaidLeaveStatus {
	alerts := make([]PaidLeaveStatus, 0)
	for _, s := range statuses {
		if s.Flagged() {
			alerts = append(alerts, s)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].UsedDays != alerts[j].UsedDays {
			return alerts[i].UsedDays < alerts[j].UsedDays
		}
		return alerts[i].Employee.Key < alerts[j].Employee.Key
	})
	return alerts
}

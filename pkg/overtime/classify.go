package overtime

import (
	"sort"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
)

type AlertLevel string

const (
	Safe    AlertLevel = "safe"
	Caution AlertLevel = "caution"
	Warning AlertLevel = "warning"
	Danger  AlertLevel = "danger"
)

// Rank orders levels by severity, most severe first.
func (l AlertLevel) Rank() int {
	switch l {
	case Danger:
		return 0
	case Warning:
		return 1
	case Caution:
		return 2
	default:
		return 3
	}
}

const monthsInYear = 12

// Result is the Article 36 evaluation of one employee's fiscal year.
type Result struct {
	Employee              attendance.Employee
	Months                []MonthlyOvertime
	SpecialProvisionCount int
	Over100hMonths        []MonthlyOvertime
	RollingAvgViolations  []RollingViolation
	AnnualHours           float64
	AnnualProgressPct     float64
	PredictedAnnualHours  float64
	CurrentMonthHours     float64
	AlertLevel            AlertLevel
}

// Classify applies the monthly, rolling and annual limits to a profile.
// The projection divides by reported months only, so a single heavy month early
// in the fiscal year projects a large annual figure.
func Classify(profile Profile, violations []RollingViolation, p period.Period) Result {
	result := Result{
		Employee:             profile.Employee,
		Months:               profile.Months,
		RollingAvgViolations: violations,
		AnnualHours:          profile.TotalHours(),
		CurrentMonthHours:    profile.HoursIn(p.Year, p.Month),
	}
	for _, m := range profile.Months {
		if m.Hours > MonthlyLimitHours {
			result.SpecialProvisionCount++
		}
		if m.Hours >= MonthlyHardLimitHours {
			result.Over100hMonths = append(result.Over100hMonths, m)
		}
	}
	result.AnnualProgressPct = result.AnnualHours / AnnualLimitHours * 100

	monthsElapsed := max(1, len(profile.Months))
	result.PredictedAnnualHours = result.AnnualHours / float64(monthsElapsed) * monthsInYear

	result.AlertLevel = alertLevel(result)
	return result
}

func alertLevel(r Result) AlertLevel {
	switch {
	case len(r.Over100hMonths) > 0,
		len(r.RollingAvgViolations) > 0,
		r.SpecialProvisionCount > MaxSpecialProvisions,
		r.AnnualProgressPct > 90:
		return Danger
	case r.SpecialProvisionCount > 4,
		r.AnnualProgressPct > 75,
		r.PredictedAnnualHours > AnnualLimitHours:
		return Warning
	case r.SpecialProvisionCount > 0,
		r.AnnualProgressPct > 50:
		return Caution
	default:
		return Safe
	}
}

// Evaluate classifies every profile.
func Evaluate(profiles []Profile, p period.Period) []Result {
	results := make([]Result, 0, len(profiles))
	for _, profile := range profiles {
		results = append(results, Classify(profile, RollingViolations(profile.Months), p))
	}
	SortResults(results)
	return results
}

// SortResults orders by severity, then annual hours descending, then employee key.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.AlertLevel.Rank() != b.AlertLevel.Rank() {
			return a.AlertLevel.Rank() < b.AlertLevel.Rank()
		}
		if a.AnnualHours != b.AnnualHours {
			return a.AnnualHours > b.AnnualHours
		}
		return a.Employee.Key < b.Employee.Key
	})
}

// Report splits results into itemized alerts and a count of safe employees.
type Report struct {
	Alerts    []Result
	SafeCount int
	Counts    map[AlertLevel]int
}

func NewReport(results []Result) Report {
	report := Report{
		Alerts: make([]Result, 0, len(results)),
		Counts: map[AlertLevel]int{Danger: 0, Warning: 0, Caution: 0, Safe: 0},
	}
	for _, r := range results {
		report.Counts[r.AlertLevel]++
		if r.AlertLevel == Safe {
			report.SafeCount++
			continue
		}
		report.Alerts = append(report.Alerts, r)
	}
	SortResults(report.Alerts)
	return report
}

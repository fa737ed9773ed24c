package analysis

import (
	"sort"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/leave"
	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
)

// RankingThresholdMinutes is the monthly overtime from which an employee is listed in the ranking.
const RankingThresholdMinutes = 20 * 60

const (
	trendMonths  = 6
	trendTopSize = 3
)

// Band buckets a month of overtime for display.
type Band string

const (
	BandNormal Band = "normal"
	BandOver30 Band = "over_30h"
	BandOver45 Band = "over_45h"
	BandOver80 Band = "over_80h"
)

func BandFor(hours float64) Band {
	switch {
	case hours >= overtime.RollingAvgLimitHours:
		return BandOver80
	case hours >= overtime.MonthlyLimitHours:
		return BandOver45
	case hours >= 30:
		return BandOver30
	default:
		return BandNormal
	}
}

type CurrentMonthEntry struct {
	Employee attendance.Employee
	Minutes  int
	Hours    float64
	Band     Band
}

type CompanyAverages struct {
	Headcount               int
	AvgOvertimeHours        float64
	Over45Count             int
	Over80Count             int
	AvgPaidLeaveDays        float64
	PaidLeaveUtilizationPct float64
}

type DivisionSummary struct {
	Name             string
	Headcount        int
	AvgOvertimeHours float64
	AvgPaidLeaveDays float64
}

type TrendMonth struct {
	Period period.Period
	// AvgHours averages the employees that reported overtime that month.
	AvgHours float64
}

type TrendSeries struct {
	Employee   attendance.Employee
	Hours      []float64
	TotalHours float64
}

type Trend struct {
	Months []TrendMonth
	Top    []TrendSeries
}

// currentMonthOvertime lists every known employee for the period month,
// employees without a record at zero. Highest overtime first.
func currentMonthOvertime(records attendance.CanonicalSet, employees attendance.Directory, p period.Period) []CurrentMonthEntry {
	entries := make([]CurrentMonthEntry, 0, len(employees))
	for _, emp := range employees.Sorted() {
		minutes := 0
		if r, ok := records.Get(emp.Key, p.Year, p.Month); ok {
			minutes = r.TotalOvertimeMinutes()
		}
		hours := float64(minutes) / 60
		entries = append(entries, CurrentMonthEntry{
			Employee: emp,
			Minutes:  minutes,
			Hours:    hours,
			Band:     BandFor(hours),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Minutes != entries[j].Minutes {
			return entries[i].Minutes > entries[j].Minutes
		}
		return entries[i].Employee.Key < entries[j].Employee.Key
	})
	return entries
}

func companyAverages(currentMonth []CurrentMonthEntry, paidLeave []leave.PaidLeaveStatus) CompanyAverages {
	averages := CompanyAverages{Headcount: len(currentMonth)}
	totalHours := 0.0
	for _, e := range currentMonth {
		totalHours += e.Hours
		if e.Hours > overtime.MonthlyLimitHours {
			averages.Over45Count++
		}
		if e.Hours > overtime.RollingAvgLimitHours {
			averages.Over80Count++
		}
	}
	if len(currentMonth) > 0 {
		averages.AvgOvertimeHours = totalHours / float64(len(currentMonth))
	}

	totalPaid := 0.0
	for _, s := range paidLeave {
		totalPaid += s.UsedDays
	}
	if len(paidLeave) > 0 {
		averages.AvgPaidLeaveDays = totalPaid / float64(len(paidLeave))
		averages.PaidLeaveUtilizationPct = averages.AvgPaidLeaveDays / leave.AnnualGrantDays * 100
	}
	return averages
}

// ranking keeps the current month entries at or above the ranking threshold.
func ranking(currentMonth []CurrentMonthEntry) []CurrentMonthEntry {
	ranked := make([]CurrentMonthEntry, 0)
	for _, e := range currentMonth {
		if e.Minutes >= RankingThresholdMinutes {
			ranked = append(ranked, e)
		}
	}
	return ranked
}

type divisionAccumulator struct {
	employees       map[string]struct{}
	overtimeMinutes int
	paidLeaveDays   float64
}

// divisionSummaries averages fiscal-year overtime and paid leave per head of
// every division, busiest division first.
func divisionSummaries(records []attendance.RawMonthlyRecord, employees attendance.Directory, p period.Period) []DivisionSummary {
	byDivision := make(map[string]*divisionAccumulator)
	for _, r := range records {
		if !p.Contains(r.Year, r.Month) {
			continue
		}
		emp, ok := employees.Lookup(r.EmployeeKey)
		if !ok {
			continue
		}
		acc := byDivision[emp.Division()]
		if acc == nil {
			acc = &divisionAccumulator{employees: make(map[string]struct{})}
			byDivision[emp.Division()] = acc
		}
		acc.employees[emp.Key] = struct{}{}
		acc.overtimeMinutes += r.TotalOvertimeMinutes()
		acc.paidLeaveDays += r.LeaveDays(attendance.PaidLeave)
	}

	summaries := make([]DivisionSummary, 0, len(byDivision))
	for name, acc := range byDivision {
		headcount := len(acc.employees)
		summaries = append(summaries, DivisionSummary{
			Name:             name,
			Headcount:        headcount,
			AvgOvertimeHours: float64(acc.overtimeMinutes) / 60 / float64(headcount),
			AvgPaidLeaveDays: acc.paidLeaveDays / float64(headcount),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AvgOvertimeHours != summaries[j].AvgOvertimeHours {
			return summaries[i].AvgOvertimeHours > summaries[j].AvgOvertimeHours
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}

// overtimeTrend covers the six calendar months ending at p, regardless of the
// fiscal year, with the three employees carrying the most overtime in that window.
func overtimeTrend(records attendance.CanonicalSet, employees attendance.Directory, p period.Period) Trend {
	months := make([]period.Period, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		months = append(months, p.AddMonths(-i))
	}

	series := make([]TrendSeries, 0, len(employees))
	sums := make([]float64, len(months))
	counts := make([]int, len(months))
	for _, emp := range employees.Sorted() {
		s := TrendSeries{Employee: emp, Hours: make([]float64, len(months))}
		for i, m := range months {
			r, ok := records.Get(emp.Key, m.Year, m.Month)
			if !ok {
				continue
			}
			hours := float64(r.TotalOvertimeMinutes()) / 60
			s.Hours[i] = hours
			s.TotalHours += hours
			if hours > 0 {
				sums[i] += hours
				counts[i]++
			}
		}
		if s.TotalHours > 0 {
			series = append(series, s)
		}
	}

	trend := Trend{Months: make([]TrendMonth, 0, len(months))}
	for i, m := range months {
		month := TrendMonth{Period: m}
		if counts[i] > 0 {
			month.AvgHours = sums[i] / float64(counts[i])
		}
		trend.Months = append(trend.Months, month)
	}

	sort.Slice(series, func(i, j int) bool {
		if series[i].TotalHours != series[j].TotalHours {
			return series[i].TotalHours > series[j].TotalHours
		}
		return series[i].Employee.Key < series[j].Employee.Key
	})
	if len(series) > trendTopSize {
		series = series[:trendTopSize]
	}
	trend.Top = series
	return trend
}

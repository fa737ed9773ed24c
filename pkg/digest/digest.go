package digest

import (
	"fmt"
	"math"
	"time"

	"github.com/kotlens/kotlens/pkg/analysis"
	"github.com/kotlens/kotlens/pkg/leave"
	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
)

// Digest is the content of one compliance mail, ready for the template.
type Digest struct {
	Period          period.Period
	MonthsRemaining int
	Subject         string
	Averages        analysis.CompanyAverages
	CurrentMonth    []CurrentMonthRow
	Alerts          []AlertRow
	PaidLeave       []PaidLeaveRow
	CompLeave       []CompLeaveRow
	GeneratedAt     time.Time
}

type CurrentMonthRow struct {
	Name     string
	Division string
	Hours    float64
	// BarWidth is the share of a 100h month, capped at 100.
	BarWidth int
	Band     analysis.Band
}

type AlertRow struct {
	Level             overtime.AlertLevel
	Name              string
	Division          string
	AnnualHours       float64
	SpecialProvisions int
	ProgressPct       float64
}

type PaidLeaveRow struct {
	Name            string
	Division        string
	UsedDays        float64
	RemainingNeeded float64
	Severity        leave.Severity
}

type CompLeaveRow struct {
	Name            string
	Division        string
	Unconsumed      float64
	Expiration      string
	DaysUntilExpiry int
	Status          leave.CompLeaveStatus
}

// Subject names the number of danger-level employees whenever anyone is above
// the safe tier.
func Subject(result analysis.Result) string {
	label := fmt.Sprintf("%d年%d月", result.Period.Year, result.Period.Month)
	if result.HasAlerts() {
		return fmt.Sprintf("[重要] KOT勤怠アラート: %d件の違反リスク — %s", result.Compliance.Counts[overtime.Danger], label)
	}
	return fmt.Sprintf("✅ KOT勤怠レポート — %s（問題なし）", label)
}

// Build lays out an analysis for the mail template.
func Build(report analysis.Report, now time.Time) Digest {
	r := report.Result
	d := Digest{
		Period:          r.Period,
		MonthsRemaining: r.MonthsRemaining,
		Subject:         Subject(r),
		Averages:        r.CompanyAverages,
		CurrentMonth:    make([]CurrentMonthRow, 0, len(r.CurrentMonth)),
		Alerts:          make([]AlertRow, 0, len(r.Compliance.Alerts)),
		PaidLeave:       make([]PaidLeaveRow, 0, len(r.PaidLeaveAlerts)),
		CompLeave:       make([]CompLeaveRow, 0, len(r.CompLeaveAlerts)),
		GeneratedAt:     now,
	}
	for _, e := range r.CurrentMonth {
		d.CurrentMonth = append(d.CurrentMonth, CurrentMonthRow{
			Name:     e.Employee.DisplayName(),
			Division: e.Employee.Division(),
			Hours:    e.Hours,
			BarWidth: int(math.Min(math.Round(e.Hours), 100)),
			Band:     e.Band,
		})
	}
	for _, a := range r.Compliance.Alerts {
		d.Alerts = append(d.Alerts, AlertRow{
			Level:             a.AlertLevel,
			Name:              a.Employee.DisplayName(),
			Division:          a.Employee.Division(),
			AnnualHours:       a.AnnualHours,
			SpecialProvisions: a.SpecialProvisionCount,
			ProgressPct:       a.AnnualProgressPct,
		})
	}
	for _, s := range r.PaidLeaveAlerts {
		d.PaidLeave = append(d.PaidLeave, PaidLeaveRow{
			Name:            s.Employee.DisplayName(),
			Division:        s.Employee.Division(),
			UsedDays:        s.UsedDays,
			RemainingNeeded: s.RemainingNeeded,
			Severity:        s.Severity,
		})
	}
	for _, b := range r.CompLeaveAlerts {
		if b.Status == leave.CompLeaveOK {
			continue
		}
		row := CompLeaveRow{
			Name:       b.Employee.DisplayName(),
			Division:   b.Employee.Division(),
			Unconsumed: b.Unconsumed,
			Status:     b.Status,
		}
		if b.EarliestExpiration != nil {
			row.Expiration = b.EarliestExpiration.Format("2006-01-02")
		}
		if b.DaysUntilExpiry != nil {
			row.DaysUntilExpiry = *b.DaysUntilExpiry
		}
		d.CompLeave = append(d.CompLeave, row)
	}
	return d
}

// AlertCount is the number of employees above the safe tier.
func (d Digest) AlertCount() int {
	return len(d.Alerts)
}

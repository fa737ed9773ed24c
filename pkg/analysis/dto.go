package analysis

import (
	"fmt"
	"time"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/leave"
	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
	"github.com/shopspring/decimal"
)

type EmployeeDTO struct {
	Key      string `json:"key"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name"`
	Division string `json:"division"`
}

type MonthHoursDTO struct {
	Month string  `json:"month"`
	Hours float64 `json:"hours"`
}

type RollingViolationDTO struct {
	Window   int     `json:"window"`
	AvgHours float64 `json:"avgHours"`
	Months   string  `json:"months"`
}

type ComplianceDTO struct {
	Employee              EmployeeDTO           `json:"employee"`
	AlertLevel            overtime.AlertLevel   `json:"alertLevel"`
	AnnualHours           float64               `json:"annualHours"`
	AnnualProgressPct     float64               `json:"annualProgressPct"`
	PredictedAnnualHours  float64               `json:"predictedAnnualHours"`
	CurrentMonthHours     float64               `json:"currentMonthHours"`
	SpecialProvisionCount int                   `json:"specialProvisionCount"`
	Over100hMonths        []string              `json:"over100hMonths"`
	RollingAvgViolations  []RollingViolationDTO `json:"rollingAvgViolations"`
	Months                []MonthHoursDTO       `json:"months"`
}

type PaidLeaveDTO struct {
	Employee        EmployeeDTO    `json:"employee"`
	UsedDays        float64        `json:"usedDays"`
	RemainingNeeded float64        `json:"remainingNeeded"`
	MonthsRemaining int            `json:"monthsRemaining"`
	PacePerMonth    float64        `json:"pacePerMonth"`
	Severity        leave.Severity `json:"severity"`
}

type LegalHolidayWorkDTO struct {
	Month      string  `json:"month"`
	WorkDays   float64 `json:"workDays"`
	Expiration string  `json:"expiration"`
}

type CompLeaveDTO struct {
	Employee           EmployeeDTO           `json:"employee"`
	TotalWorkDays      float64               `json:"totalWorkDays"`
	TotalCompUsed      float64               `json:"totalCompUsed"`
	Unconsumed         float64               `json:"unconsumed"`
	EarliestExpiration *string               `json:"earliestExpiration"`
	DaysUntilExpiry    *int                  `json:"daysUntilExpiry"`
	Status             leave.CompLeaveStatus `json:"status"`
	Entries            []LegalHolidayWorkDTO `json:"entries"`
}

type CurrentMonthDTO struct {
	Employee EmployeeDTO `json:"employee"`
	Minutes  int         `json:"minutes"`
	Hours    float64     `json:"hours"`
	Band     Band        `json:"band"`
}

type CompanyAveragesDTO struct {
	Headcount               int     `json:"headcount"`
	AvgOvertimeHours        float64 `json:"avgOvertimeHours"`
	Over45Count             int     `json:"over45Count"`
	Over80Count             int     `json:"over80Count"`
	AvgPaidLeaveDays        float64 `json:"avgPaidLeaveDays"`
	PaidLeaveUtilizationPct float64 `json:"paidLeaveUtilizationPct"`
}

type DivisionDTO struct {
	Name             string  `json:"name"`
	Headcount        int     `json:"headcount"`
	AvgOvertimeHours float64 `json:"avgOvertimeHours"`
	AvgPaidLeaveDays float64 `json:"avgPaidLeaveDays"`
}

type TrendMonthDTO struct {
	Month    string  `json:"month"`
	Label    string  `json:"label"`
	AvgHours float64 `json:"avgHours"`
}

type TrendSeriesDTO struct {
	Employee   EmployeeDTO `json:"employee"`
	Hours      []float64   `json:"hours"`
	TotalHours float64     `json:"totalHours"`
}

type TrendDTO struct {
	Months []TrendMonthDTO  `json:"months"`
	Top    []TrendSeriesDTO `json:"top"`
}

type SummaryDTO struct {
	Danger  int `json:"danger"`
	Warning int `json:"warning"`
	Caution int `json:"caution"`
	Safe    int `json:"safe"`
}

type AnalysisDTO struct {
	Period          period.Period      `json:"period"`
	FiscalYear      period.FiscalYear  `json:"fiscalYear"`
	MonthsRemaining int                `json:"monthsRemaining"`
	Source          attendance.Source  `json:"source"`
	FetchedAt       time.Time          `json:"fetchedAt"`
	FailedMonths    []string           `json:"failedMonths"`
	Summary         SummaryDTO         `json:"summary"`
	CompanyAverages CompanyAveragesDTO `json:"companyAverages"`
	Alerts          []ComplianceDTO    `json:"alerts"`
	SafeCount       int                `json:"safeCount"`
	Employees       []ComplianceDTO    `json:"employees"`
	PaidLeave       []PaidLeaveDTO     `json:"paidLeave"`
	PaidLeaveAlerts []PaidLeaveDTO     `json:"paidLeaveAlerts"`
	CompLeaveAlerts []CompLeaveDTO     `json:"compLeaveAlerts"`
	CurrentMonth    []CurrentMonthDTO  `json:"currentMonth"`
	Ranking         []CurrentMonthDTO  `json:"ranking"`
	Divisions       []DivisionDTO      `json:"divisions"`
	Trend           TrendDTO           `json:"trend"`
}

const dateLayout = "2006-01-02"

// Round1 rounds a reported figure to one decimal.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func EmployeeToDTO(e attendance.Employee) EmployeeDTO {
	return EmployeeDTO{
		Key:      e.Key,
		Code:     e.Code,
		Name:     e.DisplayName(),
		Division: e.Division(),
	}
}

func ComplianceToDTO(r overtime.Result) ComplianceDTO {
	dto := ComplianceDTO{
		Employee:              EmployeeToDTO(r.Employee),
		AlertLevel:            r.AlertLevel,
		AnnualHours:           Round1(r.AnnualHours),
		AnnualProgressPct:     Round1(r.AnnualProgressPct),
		PredictedAnnualHours:  Round1(r.PredictedAnnualHours),
		CurrentMonthHours:     Round1(r.CurrentMonthHours),
		SpecialProvisionCount: r.SpecialProvisionCount,
		Over100hMonths:        make([]string, 0, len(r.Over100hMonths)),
		RollingAvgViolations:  make([]RollingViolationDTO, 0, len(r.RollingAvgViolations)),
		Months:                make([]MonthHoursDTO, 0, len(r.Months)),
	}
	for _, m := range r.Over100hMonths {
		dto.Over100hMonths = append(dto.Over100hMonths, m.MonthKey)
	}
	for _, v := range r.RollingAvgViolations {
		dto.RollingAvgViolations = append(dto.RollingAvgViolations, RollingViolationDTO{
			Window:   v.Window,
			AvgHours: v.AvgHours,
			Months:   v.Months,
		})
	}
	for _, m := range r.Months {
		dto.Months = append(dto.Months, MonthHoursDTO{Month: m.MonthKey, Hours: Round1(m.Hours)})
	}
	return dto
}

func PaidLeaveToDTO(s leave.PaidLeaveStatus) PaidLeaveDTO {
	return PaidLeaveDTO{
		Employee:        EmployeeToDTO(s.Employee),
		UsedDays:        s.UsedDays,
		RemainingNeeded: s.RemainingNeeded,
		MonthsRemaining: s.MonthsRemaining,
		PacePerMonth:    Round1(s.PacePerMonth),
		Severity:        s.Severity,
	}
}

func CompLeaveToDTO(b leave.CompLeaveBalance) CompLeaveDTO {
	dto := CompLeaveDTO{
		Employee:        EmployeeToDTO(b.Employee),
		TotalWorkDays:   b.TotalWorkDays,
		TotalCompUsed:   b.TotalCompUsed,
		Unconsumed:      b.Unconsumed,
		DaysUntilExpiry: b.DaysUntilExpiry,
		Status:          b.Status,
		Entries:         make([]LegalHolidayWorkDTO, 0, len(b.Entries)),
	}
	if b.EarliestExpiration != nil {
		expiration := b.EarliestExpiration.Format(dateLayout)
		dto.EarliestExpiration = &expiration
	}
	for _, e := range b.Entries {
		dto.Entries = append(dto.Entries, LegalHolidayWorkDTO{
			Month:      period.MonthKey(e.Year, e.Month),
			WorkDays:   e.WorkDays,
			Expiration: e.Expiration.Format(dateLayout),
		})
	}
	return dto
}

func currentMonthToDTOs(entries []CurrentMonthEntry) []CurrentMonthDTO {
	dtos := make([]CurrentMonthDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, CurrentMonthDTO{
			Employee: EmployeeToDTO(e.Employee),
			Minutes:  e.Minutes,
			Hours:    Round1(e.Hours),
			Band:     e.Band,
		})
	}
	return dtos
}

func ReportToDTO(report Report) AnalysisDTO {
	r := report.Result
	dto := AnalysisDTO{
		Period:          r.Period,
		FiscalYear:      r.FiscalYear,
		MonthsRemaining: r.MonthsRemaining,
		Source:          report.Source,
		FetchedAt:       report.FetchedAt,
		FailedMonths:    append(make([]string, 0, len(report.FailedMonths)), report.FailedMonths...),
		Summary: SummaryDTO{
			Danger:  r.Compliance.Counts[overtime.Danger],
			Warning: r.Compliance.Counts[overtime.Warning],
			Caution: r.Compliance.Counts[overtime.Caution],
			Safe:    r.Compliance.Counts[overtime.Safe],
		},
		CompanyAverages: CompanyAveragesDTO{
			Headcount:               r.CompanyAverages.Headcount,
			AvgOvertimeHours:        Round1(r.CompanyAverages.AvgOvertimeHours),
			Over45Count:             r.CompanyAverages.Over45Count,
			Over80Count:             r.CompanyAverages.Over80Count,
			AvgPaidLeaveDays:        Round1(r.CompanyAverages.AvgPaidLeaveDays),
			PaidLeaveUtilizationPct: Round1(r.CompanyAverages.PaidLeaveUtilizationPct),
		},
		Alerts:          make([]ComplianceDTO, 0, len(r.Compliance.Alerts)),
		SafeCount:       r.Compliance.SafeCount,
		Employees:       make([]ComplianceDTO, 0, len(r.Evaluations)),
		PaidLeave:       make([]PaidLeaveDTO, 0, len(r.PaidLeave)),
		PaidLeaveAlerts: make([]PaidLeaveDTO, 0, len(r.PaidLeaveAlerts)),
		CompLeaveAlerts: make([]CompLeaveDTO, 0, len(r.CompLeaveAlerts)),
		CurrentMonth:    currentMonthToDTOs(r.CurrentMonth),
		Ranking:         currentMonthToDTOs(r.Ranking),
		Divisions:       make([]DivisionDTO, 0, len(r.Divisions)),
		Trend: TrendDTO{
			Months: make([]TrendMonthDTO, 0, len(r.Trend.Months)),
			Top:    make([]TrendSeriesDTO, 0, len(r.Trend.Top)),
		},
	}
	for _, a := range r.Compliance.Alerts {
		dto.Alerts = append(dto.Alerts, ComplianceToDTO(a))
	}
	for _, e := range r.Evaluations {
		dto.Employees = append(dto.Employees, ComplianceToDTO(e))
	}
	for _, s := range r.PaidLeave {
		dto.PaidLeave = append(dto.PaidLeave, PaidLeaveToDTO(s))
	}
	for _, s := range r.PaidLeaveAlerts {
		dto.PaidLeaveAlerts = append(dto.PaidLeaveAlerts, PaidLeaveToDTO(s))
	}
	for _, b := range r.CompLeaveAlerts {
		dto.CompLeaveAlerts = append(dto.CompLeaveAlerts, CompLeaveToDTO(b))
	}
	for _, d := range r.Divisions {
		dto.Divisions = append(dto.Divisions, DivisionDTO{
			Name:             d.Name,
			Headcount:        d.Headcount,
			AvgOvertimeHours: Round1(d.AvgOvertimeHours),
			AvgPaidLeaveDays: Round1(d.AvgPaidLeaveDays),
		})
	}
	for _, m := range r.Trend.Months {
		dto.Trend.Months = append(dto.Trend.Months, TrendMonthDTO{
			Month:    m.Period.Key(),
			Label:    fmt.Sprintf("%d月", m.Period.Month),
			AvgHours: Round1(m.AvgHours),
		})
	}
	for _, s := range r.Trend.Top {
		hours := make([]float64, 0, len(s.Hours))
		for _, h := range s.Hours {
			hours = append(hours, Round1(h))
		}
		dto.Trend.Top = append(dto.Trend.Top, TrendSeriesDTO{
			Employee:   EmployeeToDTO(s.Employee),
			Hours:      hours,
			TotalHours: Round1(s.TotalHours),
		})
	}
	return dto
}

package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kotlens/kotlens/internal/test_utils"
	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/leave"
	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june2024 = period.Period{Year: 2024, Month: 6}
var today = time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)

func sampleRecords() []attendance.RawMonthlyRecord {
	legalHoliday := test_utils.OvertimeRecord("e3", 2024, 5, 10)
	legalHoliday.LegalHolidayWorkDays = 1
	shortDuplicate := test_utils.OvertimeRecord("e1", 2024, 6, 999)
	shortDuplicate.WorkingDayCount = 5

	return []attendance.RawMonthlyRecord{
		test_utils.OvertimeRecord("e1", 2024, 4, 50),
		test_utils.WithPaidLeave(test_utils.OvertimeRecord("e1", 2024, 5, 50), 2),
		shortDuplicate,
		test_utils.OvertimeRecord("e1", 2024, 6, 90),
		test_utils.OvertimeRecord("e2", 2024, 1, 30),
		test_utils.OvertimeRecord("e2", 2024, 6, 25),
		legalHoliday,
		test_utils.OvertimeRecord("x9", 2024, 6, 200),
	}
}

func keys[T any](items []T, key func(T) string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, key(item))
	}
	return result
}

func TestAnalyze(t *testing.T) {
	employees := test_utils.Employees()

	t.Run("should evaluate only known employees with records", func(t *testing.T) {
		// when
		result, err := Analyze(employees, sampleRecords(), june2024, today)

		// then
		require.NoError(t, err)
		assert.Equal(t, period.FiscalYear{StartYear: 2024, EndYear: 2025}, result.FiscalYear)
		assert.Equal(t, 9, result.MonthsRemaining)
		assert.Equal(t, []string{"e1", "e2", "e3"}, keys(result.Evaluations, func(r overtime.Result) string { return r.Employee.Key }))

		e1 := result.Evaluations[0]
		assert.Equal(t, overtime.Warning, e1.AlertLevel)
		assert.Equal(t, 190.0, e1.AnnualHours)
		assert.Equal(t, 90.0, e1.CurrentMonthHours)
		assert.Equal(t, 3, e1.SpecialProvisionCount)

		assert.Len(t, result.Compliance.Alerts, 1)
		assert.Equal(t, 2, result.Compliance.SafeCount)
		assert.True(t, result.HasAlerts())
	})

	t.Run("should compute company averages over every employee", func(t *testing.T) {
		// when
		result, err := Analyze(employees, sampleRecords(), june2024, today)

		// then
		require.NoError(t, err)
		averages := result.CompanyAverages
		assert.Equal(t, 4, averages.Headcount)
		assert.InDelta(t, 28.75, averages.AvgOvertimeHours, 1e-9)
		assert.Equal(t, 1, averages.Over45Count)
		assert.Equal(t, 1, averages.Over80Count)
		assert.InDelta(t, 0.5, averages.AvgPaidLeaveDays, 1e-9)
		assert.InDelta(t, 2.5, averages.PaidLeaveUtilizationPct, 1e-9)
	})

	t.Run("should list the current month and rank heavy overtime", func(t *testing.T) {
		// when
		result, err := Analyze(employees, sampleRecords(), june2024, today)

		// then
		require.NoError(t, err)
		employeeKey := func(e CurrentMonthEntry) string { return e.Employee.Key }
		assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, keys(result.CurrentMonth, employeeKey))
		assert.Equal(t, 5400, result.CurrentMonth[0].Minutes)
		assert.Equal(t, BandOver80, result.CurrentMonth[0].Band)
		assert.Equal(t, BandNormal, result.CurrentMonth[1].Band)
		assert.Equal(t, []string{"e1", "e2"}, keys(result.Ranking, employeeKey))
	})

	t.Run("should summarize divisions by average overtime", func(t *testing.T) {
		// when
		result, err := Analyze(employees, sampleRecords(), june2024, today)

		// then
		require.NoError(t, err)
		require.Len(t, result.Divisions, 2)
		assert.Equal(t, DivisionSummary{Name: "開発部", Headcount: 2, AvgOvertimeHours: 107.5, AvgPaidLeaveDays: 1}, result.Divisions[0])
		assert.Equal(t, DivisionSummary{Name: "営業部", Headcount: 1, AvgOvertimeHours: 10, AvgPaidLeaveDays: 0}, result.Divisions[1])
	})

	t.Run("should build the six month trend across the fiscal year boundary", func(t *testing.T) {
		// when
		result, err := Analyze(employees, sampleRecords(), june2024, today)

		// then
		require.NoError(t, err)
		require.Len(t, result.Trend.Months, 6)
		assert.Equal(t, period.Period{Year: 2024, Month: 1}, result.Trend.Months[0].Period)
		averages := make([]float64, 0, 6)
		for _, m := range result.Trend.Months {
			averages = append(averages, m.AvgHours)
		}
		assert.Equal(t, []float64{30, 0, 0, 50, 30, 57.5}, averages)

		assert.Equal(t, []string{"e1", "e2", "e3"}, keys(result.Trend.Top, func(s TrendSeries) string { return s.Employee.Key }))
		assert.Equal(t, []float64{30, 0, 0, 0, 0, 25}, result.Trend.Top[1].Hours)
		assert.Equal(t, 55.0, result.Trend.Top[1].TotalHours)
	})

	t.Run("should track paid and compensatory leave", func(t *testing.T) {
		// when
		result, err := Analyze(employees, sampleRecords(), june2024, today)

		// then
		require.NoError(t, err)
		assert.Len(t, result.PaidLeave, 4)
		assert.Equal(t, []string{"e2", "e3", "e4", "e1"}, keys(result.PaidLeaveAlerts, func(s leave.PaidLeaveStatus) string { return s.Employee.Key }))

		require.Len(t, result.CompLeaveAlerts, 1)
		comp := result.CompLeaveAlerts[0]
		assert.Equal(t, "e3", comp.Employee.Key)
		assert.Equal(t, 1.0, comp.Unconsumed)
		assert.Equal(t, leave.CompLeaveOK, comp.Status)
		assert.Equal(t, time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), *comp.EarliestExpiration)
	})

	t.Run("should produce identical output for identical input", func(t *testing.T) {
		// given
		records := sampleRecords()
		original := sampleRecords()

		// when
		first, err := Analyze(employees, records, june2024, today)
		require.NoError(t, err)
		second, err := Analyze(employees, records, june2024, today)
		require.NoError(t, err)

		// then
		firstJSON, err := json.Marshal(ReportToDTO(Report{Result: first}))
		require.NoError(t, err)
		secondJSON, err := json.Marshal(ReportToDTO(Report{Result: second}))
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(secondJSON))
		assert.Equal(t, original, records)
	})

	t.Run("should ignore records of unknown employees", func(t *testing.T) {
		// given
		withoutUnknown := sampleRecords()
		withoutUnknown = withoutUnknown[:len(withoutUnknown)-1]

		// when
		with, err := Analyze(employees, sampleRecords(), june2024, today)
		require.NoError(t, err)
		without, err := Analyze(employees, withoutUnknown, june2024, today)
		require.NoError(t, err)

		// then
		assert.Equal(t, without, with)
	})

	t.Run("should reject an invalid period", func(t *testing.T) {
		// when
		_, err := Analyze(employees, sampleRecords(), period.Period{Year: 2024, Month: 13}, today)

		// then
		assert.ErrorIs(t, err, period.ErrInvalidPeriod)
	})

	t.Run("should report nothing without records", func(t *testing.T) {
		// when
		result, err := Analyze(employees, nil, june2024, today)

		// then
		require.NoError(t, err)
		assert.Empty(t, result.Evaluations)
		assert.False(t, result.HasAlerts())
		assert.Equal(t, 4, result.CompanyAverages.Headcount)
		assert.Equal(t, 0.0, result.CompanyAverages.AvgOvertimeHours)
		assert.Empty(t, result.Ranking)
		assert.Empty(t, result.Divisions)
		assert.Empty(t, result.Trend.Top)
	})
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		hours float64
		want  Band
	}{
		{0, BandNormal},
		{29.9, BandNormal},
		{30, BandOver30},
		{45, BandOver45},
		{79.9, BandOver45},
		{80, BandOver80},
		{120, BandOver80},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.hours), "hours %v", tt.hours)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 26.4, Round1(26.388888))
	assert.Equal(t, 0.1, Round1(0.05))
	assert.Equal(t, 107.5, Round1(107.5))
}

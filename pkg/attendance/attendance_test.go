package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	t.Run("should keep the record with the highest working day count", func(t *testing.T) {
		// given
		records := []RawMonthlyRecord{
			{EmployeeKey: "e1", Year: 2024, Month: 5, WorkingDayCount: 10, OvertimeMinutes: 100},
			{EmployeeKey: "e1", Year: 2024, Month: 5, WorkingDayCount: 21, OvertimeMinutes: 200},
			{EmployeeKey: "e1", Year: 2024, Month: 5, WorkingDayCount: 15, OvertimeMinutes: 300},
		}

		// when
		set := Dedupe(records)

		// then
		require.Equal(t, 1, set.Len())
		r, ok := set.Get("e1", 2024, 5)
		require.True(t, ok)
		assert.Equal(t, 200, r.OvertimeMinutes)
	})

	t.Run("should keep the first record on equal working day counts", func(t *testing.T) {
		// given
		records := []RawMonthlyRecord{
			{EmployeeKey: "e1", Year: 2024, Month: 5, WorkingDayCount: 20, OvertimeMinutes: 111},
			{EmployeeKey: "e1", Year: 2024, Month: 5, WorkingDayCount: 20, OvertimeMinutes: 222},
		}

		// when
		set := Dedupe(records)

		// then
		r, _ := set.Get("e1", 2024, 5)
		assert.Equal(t, 111, r.OvertimeMinutes)
	})

	t.Run("should treat a missing working day count as zero", func(t *testing.T) {
		// given
		records := []RawMonthlyRecord{
			{EmployeeKey: "e1", Year: 2024, Month: 5, OvertimeMinutes: 1},
			{EmployeeKey: "e1", Year: 2024, Month: 5, OvertimeMinutes: 2},
			{EmployeeKey: "e1", Year: 2024, Month: 5, WorkingDayCount: 0.5, OvertimeMinutes: 3},
		}

		// when
		set := Dedupe(records)

		// then
		r, _ := set.Get("e1", 2024, 5)
		assert.Equal(t, 3, r.OvertimeMinutes)
	})

	t.Run("should keep distinct employee-months apart and sort them", func(t *testing.T) {
		// given
		records := []RawMonthlyRecord{
			{EmployeeKey: "e2", Year: 2024, Month: 4},
			{EmployeeKey: "e1", Year: 2024, Month: 6},
			{EmployeeKey: "e1", Year: 2023, Month: 12},
			{EmployeeKey: "e1", Year: 2024, Month: 4},
		}

		// when
		got := Dedupe(records).Records()

		// then
		keys := make([]RecordKey, 0, len(got))
		for _, r := range got {
			keys = append(keys, r.Key())
		}
		assert.Equal(t, []RecordKey{
			{"e1", 2023, 12},
			{"e1", 2024, 4},
			{"e1", 2024, 6},
			{"e2", 2024, 4},
		}, keys)
	})
}

func TestLeaveKind_Matches(t *testing.T) {
	tests := []struct {
		name  string
		entry LeaveEntry
		kind  LeaveKind
		want  bool
	}{
		{"paid leave by code", LeaveEntry{Code: 1, Name: "年休"}, PaidLeave, true},
		{"paid leave by label", LeaveEntry{Code: 42, Name: "有休"}, PaidLeave, true},
		{"paid leave by padded label", LeaveEntry{Code: 42, Name: " 有休　"}, PaidLeave, true},
		{"paid leave label on the compensatory code", LeaveEntry{Code: 19, Name: "有休"}, PaidLeave, true},
		{"compensatory code with a paid leave label", LeaveEntry{Code: 19, Name: "有休"}, CompensatoryLeave, true},
		{"paid leave label on the public holiday code", LeaveEntry{Code: 10, Name: "有休"}, PaidLeave, true},
		{"public holiday", LeaveEntry{Code: 10, Name: "公休"}, PublicHoliday, true},
		{"public holiday is not paid leave", LeaveEntry{Code: 10, Name: "公休"}, PaidLeave, false},
		{"compensatory leave by code", LeaveEntry{Code: 19, Name: "振休"}, CompensatoryLeave, true},
		{"compensatory leave ignores the label", LeaveEntry{Code: 42, Name: "振休"}, CompensatoryLeave, false},
		{"unknown entry", LeaveEntry{Code: 7, Name: "特休"}, OtherLeave, true},
		{"known entry is not other", LeaveEntry{Code: 19, Name: "振休"}, OtherLeave, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Matches(tt.entry))
		})
	}
}

func TestRawMonthlyRecord_LeaveDays(t *testing.T) {
	r := RawMonthlyRecord{HolidaysObtained: []LeaveEntry{
		{Code: 1, Name: "有休", DayCount: 1},
		{Code: 1, Name: "有休", DayCount: 0.5},
		{Code: 19, Name: "振休", DayCount: 2},
		{Code: 10, Name: "公休", DayCount: 8},
	}}

	assert.Equal(t, 1.5, r.LeaveDays(PaidLeave))
	assert.Equal(t, 2.0, r.LeaveDays(CompensatoryLeave))
	assert.Equal(t, 0.0, r.LeaveDays(OtherLeave))

	t.Run("should count relabelled entries as paid leave", func(t *testing.T) {
		// given
		mixed := RawMonthlyRecord{HolidaysObtained: []LeaveEntry{
			{Code: 19, Name: "有休", DayCount: 1},
			{Code: 10, Name: "有休", DayCount: 2},
		}}

		// then
		assert.Equal(t, 3.0, mixed.LeaveDays(PaidLeave))
		assert.Equal(t, 1.0, mixed.LeaveDays(CompensatoryLeave))
	})
}

func TestRawMonthlyRecord_PeriodEnd(t *testing.T) {
	t.Run("should use the reported end date", func(t *testing.T) {
		end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
		r := RawMonthlyRecord{Year: 2024, Month: 5, EndDate: &end}

		assert.Equal(t, end, r.PeriodEnd(time.UTC))
	})

	t.Run("should fall back to the closing day", func(t *testing.T) {
		r := RawMonthlyRecord{Year: 2024, Month: 5}

		assert.Equal(t, time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC), r.PeriodEnd(nil))
	})
}

func TestEmployee(t *testing.T) {
	e := Employee{Key: "k", LastName: "山田", FirstName: "太郎"}

	assert.Equal(t, "山田 太郎", e.DisplayName())
	assert.Equal(t, UnassignedDivision, e.Division())
	assert.Equal(t, "営業部", Employee{DivisionName: "営業部"}.Division())
	assert.Equal(t, "山田", Employee{LastName: "山田"}.DisplayName())
}

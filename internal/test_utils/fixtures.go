package test_utils

import "github.com/kotlens/kotlens/pkg/attendance"

// Employees is a small workforce spread over two divisions and one employee
// without a division.
func Employees() []attendance.Employee {
	return []attendance.Employee{
		{Key: "e1", Code: "0001", LastName: "佐藤", FirstName: "花子", DivisionName: "開発部"},
		{Key: "e2", Code: "0002", LastName: "鈴木", FirstName: "一郎", DivisionName: "開発部"},
		{Key: "e3", Code: "0003", LastName: "高橋", FirstName: "健", DivisionName: "営業部"},
		{Key: "e4", Code: "0004", LastName: "田中", FirstName: "美咲"},
	}
}

// OvertimeRecord builds a monthly record with overtime given in hours.
func OvertimeRecord(employeeKey string, year, month int, hours float64) attendance.RawMonthlyRecord {
	return attendance.RawMonthlyRecord{
		EmployeeKey:     employeeKey,
		Year:            year,
		Month:           month,
		OvertimeMinutes: int(hours * 60),
		WorkingDayCount: 20,
	}
}

// WithPaidLeave adds paid leave days to a record.
func WithPaidLeave(r attendance.RawMonthlyRecord, days float64) attendance.RawMonthlyRecord {
	r.HolidaysObtained = append(r.HolidaysObtained, attendance.LeaveEntry{
		Code:     attendance.PaidLeaveCode,
		Name:     attendance.PaidLeaveName,
		DayCount: days,
	})
	return r
}

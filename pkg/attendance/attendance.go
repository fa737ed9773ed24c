package attendance

import (
	"sort"
	"strings"
	"time"

	"github.com/kotlens/kotlens/pkg/period"
)

// UnassignedDivision is reported for employees without a division.
const UnassignedDivision = "所属なし"

type Employee struct {
	Key          string `json:"key"`
	Code         string `json:"code,omitempty"`
	LastName     string `json:"lastName"`
	FirstName    string `json:"firstName"`
	DivisionName string `json:"divisionName,omitempty"`
}

func (e Employee) DisplayName() string {
	return strings.TrimSpace(e.LastName + " " + e.FirstName)
}

func (e Employee) Division() string {
	if e.DivisionName == "" {
		return UnassignedDivision
	}
	return e.DivisionName
}

// LeaveEntry is one kind of leave obtained during a reporting month.
type LeaveEntry struct {
	Code     int     `json:"code"`
	Name     string  `json:"name"`
	DayCount float64 `json:"dayCount"`
}

// RawMonthlyRecord is one reported month of attendance for one employee as
// delivered by the attendance provider. Minutes are totals for the month.
type RawMonthlyRecord struct {
	EmployeeKey                string       `json:"employeeKey"`
	Year                       int          `json:"year"`
	Month                      int          `json:"month"`
	OvertimeMinutes            int          `json:"overtimeMinutes"`
	HolidayWorkOvertimeMinutes int          `json:"holidayWorkOvertimeMinutes"`
	LegalHolidayWorkDays       float64      `json:"legalHolidayWorkDays"`
	WorkingDayCount            float64      `json:"workingDayCount"`
	HolidaysObtained           []LeaveEntry `json:"holidaysObtained,omitempty"`
	EndDate                    *time.Time   `json:"endDate,omitempty"`
}

// TotalOvertimeMinutes adds overtime worked on non-legal holidays to regular overtime.
func (r RawMonthlyRecord) TotalOvertimeMinutes() int {
	return r.OvertimeMinutes + r.HolidayWorkOvertimeMinutes
}

func (r RawMonthlyRecord) MonthKey() string {
	return period.MonthKey(r.Year, r.Month)
}

// LeaveDays sums the day counts of the entries matching kind.
func (r RawMonthlyRecord) LeaveDays(kind LeaveKind) float64 {
	total := 0.0
	for _, h := range r.HolidaysObtained {
		if kind.Matches(h) {
			total += h.DayCount
		}
	}
	return total
}

// ClosingDay is the payroll closing day used when a record carries no end date.
const ClosingDay = 25

// PeriodEnd returns the end of the reporting month, falling back to the
// closing day of the record month.
func (r RawMonthlyRecord) PeriodEnd(loc *time.Location) time.Time {
	if r.EndDate != nil {
		return *r.EndDate
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(r.Year, time.Month(r.Month), ClosingDay, 0, 0, 0, 0, loc)
}

// Directory indexes employees by key.
type Directory map[string]Employee

func NewDirectory(employees []Employee) Directory {
	dir := make(Directory, len(employees))
	for _, e := range employees {
		dir[e.Key] = e
	}
	return dir
}

func (d Directory) Lookup(key string) (Employee, bool) {
	e, ok := d[key]
	return e, ok
}

// Sorted returns the employees ordered by key.
func (d Directory) Sorted() []Employee {
	employees := make([]Employee, 0, len(d))
	for _, e := range d {
		employees = append(employees, e)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].Key < employees[j].Key
	})
	return employees
}

package overtime

import (
	"sort"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
)

// Article 36 special-provision limits, in hours.
const (
	MonthlyLimitHours     = 45.0
	MonthlyHardLimitHours = 100.0
	RollingAvgLimitHours  = 80.0
	AnnualLimitHours      = 720.0
	MaxSpecialProvisions  = 6
)

type MonthlyOvertime struct {
	MonthKey string
	Year     int
	Month    int
	Minutes  int
	Hours    float64
}

// Profile is the fiscal-year overtime series of one employee.
type Profile struct {
	Employee     attendance.Employee
	Months       []MonthlyOvertime
	TotalMinutes int
}

func (p Profile) TotalHours() float64 {
	return float64(p.TotalMinutes) / 60
}

// HoursIn returns the overtime hours of the given month, zero when unreported.
func (p Profile) HoursIn(year, month int) float64 {
	for _, m := range p.Months {
		if m.Year == year && m.Month == month {
			return m.Hours
		}
	}
	return 0
}

// Aggregate folds canonical records into one profile per known employee that
// has at least one record inside the fiscal year of p. Records of unknown
// employees are dropped.
func Aggregate(records []attendance.RawMonthlyRecord, employees attendance.Directory, p period.Period) []Profile {
	byEmployee := make(map[string]*Profile)
	for _, r := range records {
		if !p.Contains(r.Year, r.Month) {
			continue
		}
		emp, ok := employees.Lookup(r.EmployeeKey)
		if !ok {
			continue
		}
		profile := byEmployee[r.EmployeeKey]
		if profile == nil {
			profile = &Profile{Employee: emp}
			byEmployee[r.EmployeeKey] = profile
		}
		minutes := r.TotalOvertimeMinutes()
		profile.Months = append(profile.Months, MonthlyOvertime{
			MonthKey: r.MonthKey(),
			Year:     r.Year,
			Month:    r.Month,
			Minutes:  minutes,
			Hours:    float64(minutes) / 60,
		})
		profile.TotalMinutes += minutes
	}

	profiles := make([]Profile, 0, len(byEmployee))
	for _, profile := range byEmployee {
		sort.Slice(profile.Months, func(i, j int) bool {
			a, b := profile.Months[i], profile.Months[j]
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			return a.Month < b.Month
		})
		profiles = append(profiles, *profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Employee.Key < profiles[j].Employee.Key
	})
	return profiles
}

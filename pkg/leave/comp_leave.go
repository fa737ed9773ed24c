package leave

import (
	"math"
	"sort"
	"time"

	"github.com/kotlens/kotlens/pkg/attendance"
)

const expiringSoonMonths = 3

type CompLeaveStatus string

const (
	CompLeaveOK           CompLeaveStatus = "ok"
	CompLeaveExpiringSoon CompLeaveStatus = "expiring_soon"
	CompLeaveExpired      CompLeaveStatus = "expired"
)

// LegalHolidayWork is one month with work on legal holidays. The right to the
// compensatory day expires one year after the end of that month.
type LegalHolidayWork struct {
	Year       int
	Month      int
	WorkDays   float64
	Expiration time.Time
}

type CompLeaveBalance struct {
	Employee           attendance.Employee
	TotalWorkDays      float64
	TotalCompUsed      float64
	Unconsumed         float64
	Entries            []LegalHolidayWork
	EarliestExpiration *time.Time
	Status             CompLeaveStatus
	// DaysUntilExpiry is nil without an expiration date.
	DaysUntilExpiry *int
}

type compLeaveBuilder struct {
	today     time.Time
	balances  map[string]*CompLeaveBalance
	employees attendance.Directory
}

func newCompLeaveBuilder(employees []attendance.Employee, today time.Time) *compLeaveBuilder {
	return &compLeaveBuilder{
		today:     today,
		balances:  make(map[string]*CompLeaveBalance),
		employees: attendance.NewDirectory(employees),
	}
}

func (b *compLeaveBuilder) add(r attendance.RawMonthlyRecord) {
	emp, ok := b.employees.Lookup(r.EmployeeKey)
	if !ok {
		return
	}
	workDays := r.LegalHolidayWorkDays
	compUsed := r.LeaveDays(attendance.CompensatoryLeave)
	if workDays == 0 && compUsed == 0 {
		return
	}

	balance := b.balances[r.EmployeeKey]
	if balance == nil {
		balance = &CompLeaveBalance{Employee: emp}
		b.balances[r.EmployeeKey] = balance
	}
	balance.TotalWorkDays += workDays
	balance.TotalCompUsed += compUsed
	if workDays > 0 {
		balance.Entries = append(balance.Entries, LegalHolidayWork{
			Year:       r.Year,
			Month:      r.Month,
			WorkDays:   workDays,
			Expiration: r.PeriodEnd(b.today.Location()).AddDate(1, 0, 0),
		})
	}
}

func (b *compLeaveBuilder) build() []CompLeaveBalance {
	soon := b.today.AddDate(0, expiringSoonMonths, 0)
	result := make([]CompLeaveBalance, 0, len(b.balances))
	for _, balance := range b.balances {
		balance.Unconsumed = balance.TotalWorkDays - balance.TotalCompUsed
		if balance.Unconsumed <= 0 {
			continue
		}
		sort.Slice(balance.Entries, func(i, j int) bool {
			return balance.Entries[i].Expiration.Before(balance.Entries[j].Expiration)
		})
		balance.Status = CompLeaveOK
		if len(balance.Entries) > 0 {
			earliest := balance.Entries[0].Expiration
			balance.EarliestExpiration = &earliest
			days := int(math.Ceil(earliest.Sub(b.today).Hours() / 24))
			balance.DaysUntilExpiry = &days
			switch {
			case earliest.Before(b.today):
				balance.Status = CompLeaveExpired
			case !earliest.After(soon):
				balance.Status = CompLeaveExpiringSoon
			}
		}
		result = append(result, *balance)
	}
	sort.Slice(result, func(i, j int) bool {
		a, c := result[i], result[j]
		switch {
		case a.EarliestExpiration != nil && c.EarliestExpiration != nil:
			if !a.EarliestExpiration.Equal(*c.EarliestExpiration) {
				return a.EarliestExpiration.Before(*c.EarliestExpiration)
			}
		case a.EarliestExpiration != nil:
			return true
		case c.EarliestExpiration != nil:
			return false
		}
		if a.Unconsumed != c.Unconsumed {
			return a.Unconsumed > c.Unconsumed
		}
		return a.Employee.Key < c.Employee.Key
	})
	return result
}

// TrackCompLeave matches legal-holiday work against compensatory leave taken
// over all canonical records and returns the employees with unconsumed days,
// earliest expiration first.
func TrackCompLeave(records []attendance.RawMonthlyRecord, employees []attendance.Employee, today time.Time) []CompLeaveBalance {
	b := newCompLeaveBuilder(employees, today)
	for _, r := range records {
		b.add(r)
	}
	return b.build()
}

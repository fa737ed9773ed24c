package period

import (
	"errors"
	"fmt"
	"time"
)

// FiscalYearStartMonth is the first month of the Japanese fiscal year.
const FiscalYearStartMonth = 4

// FiscalYearEndMonth is the last month of the fiscal year.
const FiscalYearEndMonth = 3

const trendMonths = 6

// maxFetchMonths bounds MonthsToFetch in case of a malformed period.
const maxFetchMonths = 24

var ErrInvalidPeriod = errors.New("invalid period")

// Period is the analysis reference point: a calendar month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// FiscalYear runs from April of StartYear through March of EndYear.
type FiscalYear struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

func New(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// FromTime returns the period containing t in t's location.
func FromTime(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d is outside 1..12", ErrInvalidPeriod, p.Month)
	}
	return nil
}

// Key formats the period as "YYYY-MM", the same label used for monthly series.
func (p Period) Key() string {
	return MonthKey(p.Year, p.Month)
}

func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (p Period) FiscalYearStart() int {
	if p.Month < FiscalYearStartMonth {
		return p.Year - 1
	}
	return p.Year
}

func (p Period) FiscalYear() FiscalYear {
	start := p.FiscalYearStart()
	return FiscalYear{StartYear: start, EndYear: start + 1}
}

// Contains reports whether a record month belongs to the fiscal year anchored at p.
// Months of the start year from April on always match; months of later years
// match only up to p.
func (p Period) Contains(year, month int) bool {
	start := p.FiscalYearStart()
	if year == start && month >= FiscalYearStartMonth {
		return true
	}
	return year > start && (year < p.Year || (year == p.Year && month <= p.Month))
}

// MonthsRemaining counts the months after p up to and including March of the
// fiscal year end. March itself yields 0.
func (p Period) MonthsRemaining() int {
	endYear := p.Year
	if p.Month >= FiscalYearStartMonth {
		endYear = p.Year + 1
	}
	return (endYear-p.Year)*12 + (FiscalYearEndMonth - p.Month)
}

// AddMonths shifts the period by n months, n may be negative.
func (p Period) AddMonths(n int) Period {
	idx := p.Year*12 + (p.Month - 1) + n
	return Period{Year: idx / 12, Month: idx%12 + 1}
}

func (p Period) Before(other Period) bool {
	return p.Year < other.Year || (p.Year == other.Year && p.Month < other.Month)
}

// ReferenceDate is the mid-month day used as "today" when browsing a period.
func (p Period) ReferenceDate(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.Year, time.Month(p.Month), 15, 0, 0, 0, 0, loc)
}

// MonthsToFetch lists the fiscal-year-to-date months plus the trailing six
// calendar months ending at p, without duplicates, oldest first.
func (p Period) MonthsToFetch() []Period {
	start := Period{Year: p.FiscalYearStart(), Month: FiscalYearStartMonth}
	trendStart := p.AddMonths(-(trendMonths - 1))
	if trendStart.Before(start) {
		start = trendStart
	}

	months := make([]Period, 0, 12)
	for m := start; !p.Before(m); m = m.AddMonths(1) {
		months = append(months, m)
		if len(months) >= maxFetchMonths {
			break
		}
	}
	return months
}

func (p Period) String() string {
	return p.Key()
}

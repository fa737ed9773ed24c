package attendance

import "sort"

// RecordKey identifies one employee-month.
type RecordKey struct {
	EmployeeKey string
	Year        int
	Month       int
}

func (r RawMonthlyRecord) Key() RecordKey {
	return RecordKey{EmployeeKey: r.EmployeeKey, Year: r.Year, Month: r.Month}
}

// CanonicalSet holds exactly one record per RecordKey.
type CanonicalSet struct {
	byKey map[RecordKey]RawMonthlyRecord
}

// Dedupe keeps, for every employee-month, the record with the highest working
// day count. On equal counts the record seen first wins, so input order matters.
func Dedupe(records []RawMonthlyRecord) CanonicalSet {
	byKey := make(map[RecordKey]RawMonthlyRecord, len(records))
	for _, r := range records {
		key := r.Key()
		stored, ok := byKey[key]
		if !ok || r.WorkingDayCount > stored.WorkingDayCount {
			byKey[key] = r
		}
	}
	return CanonicalSet{byKey: byKey}
}

func (s CanonicalSet) Len() int {
	return len(s.byKey)
}

func (s CanonicalSet) Get(employeeKey string, year, month int) (RawMonthlyRecord, bool) {
	r, ok := s.byKey[RecordKey{EmployeeKey: employeeKey, Year: year, Month: month}]
	return r, ok
}

// Records returns the canonical records ordered by employee key, year and month.
func (s CanonicalSet) Records() []RawMonthlyRecord {
	records := make([]RawMonthlyRecord, 0, len(s.byKey))
	for _, r := range s.byKey {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.EmployeeKey != b.EmployeeKey {
			return a.EmployeeKey < b.EmployeeKey
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return records
}

package attendance

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LeaveKind classifies a leave entry reported by the attendance provider.
type LeaveKind int

const (
	OtherLeave LeaveKind = iota
	PaidLeave
	PublicHoliday
	CompensatoryLeave
)

const (
	PaidLeaveCode         = 1
	PublicHolidayCode     = 10
	CompensatoryLeaveCode = 19

	PaidLeaveName     = "有休"
	PublicHolidayName = "公休"
)

var knownLeaveKinds = []LeaveKind{PaidLeave, PublicHoliday, CompensatoryLeave}

// Matches reports whether entry counts as leave of kind k. Kinds are matched
// independently, so one entry can count for more than one kind. Some tenants
// rename codes, so paid leave and public holidays also match on their label.
func (k LeaveKind) Matches(entry LeaveEntry) bool {
	switch k {
	case PaidLeave:
		return entry.Code == PaidLeaveCode || normalizeLeaveName(entry.Name) == PaidLeaveName
	case PublicHoliday:
		return entry.Code == PublicHolidayCode || normalizeLeaveName(entry.Name) == PublicHolidayName
	case CompensatoryLeave:
		return entry.Code == CompensatoryLeaveCode
	default:
		for _, known := range knownLeaveKinds {
			if known.Matches(entry) {
				return false
			}
		}
		return true
	}
}

func (k LeaveKind) String() string {
	switch k {
	case PaidLeave:
		return "paid_leave"
	case PublicHoliday:
		return "public_holiday"
	case CompensatoryLeave:
		return "compensatory_leave"
	default:
		return "other"
	}
}

// normalizeLeaveName folds width variants so half-width and full-width labels
// match the same kind.
func normalizeLeaveName(name string) string {
	return norm.NFKC.String(strings.TrimSpace(name))
}

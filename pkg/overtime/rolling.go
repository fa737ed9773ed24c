package overtime

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minRollingWindow = 2
	maxRollingWindow = 6
)

// RollingViolation reports a trailing window whose average reached the limit.
type RollingViolation struct {
	Window   int
	AvgHours float64
	Months   string
}

// RollingViolations checks the 2 to 6 month windows that end at the latest
// reported month. Only that trailing position is evaluated, so a violation in
// the middle of the year disappears once it leaves every window.
func RollingViolations(months []MonthlyOvertime) []RollingViolation {
	var violations []RollingViolation
	for window := minRollingWindow; window <= maxRollingWindow; window++ {
		if len(months) < window {
			break
		}
		recent := months[len(months)-window:]
		sum := 0.0
		labels := make([]string, 0, window)
		for _, m := range recent {
			sum += m.Hours
			labels = append(labels, m.MonthKey)
		}
		avg := sum / float64(window)
		if avg >= RollingAvgLimitHours {
			violations = append(violations, RollingViolation{
				Window:   window,
				AvgHours: roundHours(avg),
				Months:   strings.Join(labels, "〜"),
			})
		}
	}
	return violations
}

// roundHours rounds half away from zero to one decimal place.
func roundHours(h float64) float64 {
	return decimal.NewFromFloat(h).Round(1).InexactFloat64()
}

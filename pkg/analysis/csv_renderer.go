package analysis

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/kotlens/kotlens/pkg/overtime"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
)

type ReportRenderer interface {
	RenderReport(report Report) (string, error)
}

type CsvReportRendererImpl struct {
}

func NewCsvReportRenderer() *CsvReportRendererImpl {
	return &CsvReportRendererImpl{}
}

// RenderReport writes one row per evaluated employee, most severe first, with
// the twelve fiscal-year months as trailing columns.
func (t *CsvReportRendererImpl) RenderReport(report Report) (string, error) {
	fiscalMonths := fiscalYearMonths(report.Period)

	header := []string{
		"社員番号", "氏名", "所属", "判定",
		"年間残業(h)", "年間上限比(%)", "年間予測(h)", "当月残業(h)",
		"45h超回数", "100h以上の月", "複数月平均80h超",
	}
	for _, m := range fiscalMonths {
		header = append(header, m.Key())
	}

	data := make([][]string, 0, len(report.Evaluations)+1)
	data = append(data, header)
	for _, r := range report.Evaluations {
		data = append(data, evaluationRow(r, fiscalMonths))
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func evaluationRow(r overtime.Result, fiscalMonths []period.Period) []string {
	over100 := make([]string, 0, len(r.Over100hMonths))
	for _, m := range r.Over100hMonths {
		over100 = append(over100, m.MonthKey)
	}
	rolling := make([]string, 0, len(r.RollingAvgViolations))
	for _, v := range r.RollingAvgViolations {
		rolling = append(rolling, v.Months+" "+hoursToString(v.AvgHours))
	}

	row := []string{
		r.Employee.Code,
		r.Employee.DisplayName(),
		r.Employee.Division(),
		string(r.AlertLevel),
		hoursToString(r.AnnualHours),
		hoursToString(r.AnnualProgressPct),
		hoursToString(r.PredictedAnnualHours),
		hoursToString(r.CurrentMonthHours),
		strconv.Itoa(r.SpecialProvisionCount),
		strings.Join(over100, " "),
		strings.Join(rolling, " / "),
	}
	for _, m := range fiscalMonths {
		row = append(row, hoursToString(hoursIn(r.Months, m)))
	}
	return row
}

func fiscalYearMonths(p period.Period) []period.Period {
	start := period.Period{Year: p.FiscalYearStart(), Month: period.FiscalYearStartMonth}
	months := make([]period.Period, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, start.AddMonths(i))
	}
	return months
}

func hoursIn(months []overtime.MonthlyOvertime, p period.Period) float64 {
	for _, m := range months {
		if m.Year == p.Year && m.Month == p.Month {
			return m.Hours
		}
	}
	return 0
}

func hoursToString(hours float64) string {
	return strconv.FormatFloat(Round1(hours), 'f', 1, 64)
}

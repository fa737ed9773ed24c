package kot

import (
	"time"

	"github.com/kotlens/kotlens/pkg/attendance"
	log "github.com/sirupsen/logrus"
)

const endDateLayout = "2006-01-02"

// Wire shapes of the King of Time API. Only the fields the analysis reads are
// declared; missing numbers decode to zero.

type employeeDTO struct {
	Key          string `json:"key"`
	Code         string `json:"code"`
	LastName     string `json:"lastName"`
	FirstName    string `json:"firstName"`
	DivisionName string `json:"divisionName"`
}

type holidayWorkDTO struct {
	Overtime int `json:"overtime"`
}

type legalHolidayWorkDTO struct {
	DayCount float64 `json:"dayCount"`
}

type holidayObtainedDTO struct {
	Code     int     `json:"code"`
	Name     string  `json:"name"`
	DayCount float64 `json:"dayCount"`
}

type monthlyWorkingDTO struct {
	EmployeeKey      string               `json:"employeeKey"`
	Year             int                  `json:"year"`
	Month            int                  `json:"month"`
	WorkingDayCount  float64              `json:"workingdayCount"`
	Overtime         int                  `json:"overtime"`
	HolidayWork      *holidayWorkDTO      `json:"holidayWork"`
	LegalHolidayWork *legalHolidayWorkDTO `json:"legalHolidayWork"`
	HolidaysObtained []holidayObtainedDTO `json:"holidaysObtained"`
	EndDate          string               `json:"endDate"`
}

func employeeFromDTO(dto employeeDTO) attendance.Employee {
	return attendance.Employee{
		Key:          dto.Key,
		Code:         dto.Code,
		LastName:     dto.LastName,
		FirstName:    dto.FirstName,
		DivisionName: dto.DivisionName,
	}
}

func recordFromDTO(dto monthlyWorkingDTO, loc *time.Location) attendance.RawMonthlyRecord {
	record := attendance.RawMonthlyRecord{
		EmployeeKey:     dto.EmployeeKey,
		Year:            dto.Year,
		Month:           dto.Month,
		OvertimeMinutes: dto.Overtime,
		WorkingDayCount: dto.WorkingDayCount,
	}
	if dto.HolidayWork != nil {
		record.HolidayWorkOvertimeMinutes = dto.HolidayWork.Overtime
	}
	if dto.LegalHolidayWork != nil {
		record.LegalHolidayWorkDays = dto.LegalHolidayWork.DayCount
	}
	for _, h := range dto.HolidaysObtained {
		record.HolidaysObtained = append(record.HolidaysObtained, attendance.LeaveEntry{
			Code:     h.Code,
			Name:     h.Name,
			DayCount: h.DayCount,
		})
	}
	if dto.EndDate != "" {
		endDate, err := time.ParseInLocation(endDateLayout, dto.EndDate, loc)
		if err != nil {
			log.Debugf("Ignoring malformed endDate %q of employee %s: %v", dto.EndDate, dto.EmployeeKey, err)
		} else {
			record.EndDate = &endDate
		}
	}
	return record
}

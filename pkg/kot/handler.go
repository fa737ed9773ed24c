package kot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kotlens/kotlens/internal/rest"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
)

var errMonthFormat = errors.New("month must be formatted as YYYY-MM")

// Handler exposes normalized views of the attendance API to the dashboard.
type Handler struct {
	client Client
}

func NewHandler(client Client) *Handler {
	return &Handler{client: client}
}

// ListEmployees godoc
// @Summary List employees
// @Produce json
// @Success 200 {array} attendance.Employee
// @Router /api/employees [get]
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.client.FetchEmployees(r.Context())
	if err != nil {
		writeUpstreamError(w, "Failed to fetch employees", err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, employees)
}

// ListMonthlyWorkings godoc
// @Summary Monthly workings of one month
// @Param date query string false "YYYY-MM"
// @Param year query int false "year, together with month"
// @Param month query int false "month, together with year"
// @Produce json
// @Success 200 {array} attendance.RawMonthlyRecord
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/monthly-workings [get]
func (h *Handler) ListMonthlyWorkings(w http.ResponseWriter, r *http.Request) {
	p, err := monthFromQuery(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "date (YYYY-MM) parameter is required", err.Error())
		return
	}
	records, err := h.client.FetchMonthlyWorkings(r.Context(), p.Year, p.Month)
	if err != nil {
		writeUpstreamError(w, "Failed to fetch monthly workings for "+p.Key(), err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, records)
}

// ListLeaveManagements godoc
// @Summary Leave balances as reported by the attendance API
// @Param leaveCode path string false "leave code"
// @Produce json
// @Router /api/leave-managements [get]
func (h *Handler) ListLeaveManagements(w http.ResponseWriter, r *http.Request) {
	leaveCode := mux.Vars(r)["leaveCode"]
	if leaveCode == "" {
		leaveCode = r.URL.Query().Get("leaveCode")
	}
	body, err := h.client.FetchLeaveManagements(r.Context(), leaveCode)
	if err != nil {
		writeUpstreamError(w, "Failed to fetch leave managements", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Errorf("failed to write leave managements: %v", err)
	}
}

func monthFromQuery(r *http.Request) (period.Period, error) {
	query := r.URL.Query()
	if date := query.Get("date"); date != "" {
		return ParseMonth(date)
	}
	year, yearErr := strconv.Atoi(query.Get("year"))
	month, monthErr := strconv.Atoi(query.Get("month"))
	if yearErr != nil || monthErr != nil {
		return period.Period{}, errors.New("either date or year and month must be given")
	}
	return period.New(year, month)
}

// ParseMonth parses a "YYYY-MM" label.
func ParseMonth(value string) (period.Period, error) {
	if len(value) != 7 || value[4] != '-' {
		return period.Period{}, errMonthFormat
	}
	year, yearErr := strconv.Atoi(value[:4])
	month, monthErr := strconv.Atoi(value[5:])
	if yearErr != nil || monthErr != nil {
		return period.Period{}, errMonthFormat
	}
	return period.New(year, month)
}

func writeUpstreamError(w http.ResponseWriter, message string, err error) {
	var upstream *UpstreamError
	switch {
	case errors.As(err, &upstream):
		rest.WriteError(w, upstream.StatusCode, message, upstream.Body)
	case errors.Is(err, ErrMissingAPIKey):
		rest.WriteError(w, http.StatusInternalServerError, "API Key is missing in server configuration", "")
	default:
		rest.WriteError(w, http.StatusBadGateway, message, err.Error())
	}
}

package analysis

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kotlens/kotlens/internal/rest"
	"github.com/kotlens/kotlens/pkg/kot"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

const charsetShiftJIS = "shift_jis"

type Handler struct {
	service  Service
	renderer ReportRenderer
}

func NewHandler(service Service, renderer ReportRenderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// GetAnalysis godoc
// @Summary Compliance analysis of one month
// @Param year query int false "year, together with month"
// @Param month query int false "month, together with year"
// @Param offset query int false "months relative to the current month"
// @Param charset query string false "shift_jis for CSV opened in Excel"
// @Produce json
// @Produce text/csv
// @Success 200 {object} AnalysisDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 502 {object} rest.ErrorResponse
// @Router /api/analysis [get]
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	p, err := h.periodFromQuery(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid period", err.Error())
		return
	}

	report, err := h.service.Analyze(r.Context(), p)
	if err != nil {
		log.Errorf("Failed to analyze %s: %v", p, err)
		switch {
		case errors.Is(err, period.ErrInvalidPeriod):
			rest.WriteError(w, http.StatusBadRequest, "Invalid period", err.Error())
		case errors.Is(err, kot.ErrMissingAPIKey):
			rest.WriteError(w, http.StatusInternalServerError, "API Key is missing in server configuration", "")
		default:
			rest.WriteError(w, http.StatusBadGateway, "Failed to fetch attendance data", err.Error())
		}
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		h.writeCsv(w, r, report)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ReportToDTO(report))
}

func (h *Handler) writeCsv(w http.ResponseWriter, r *http.Request, report Report) {
	body, err := h.renderer.RenderReport(report)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if strings.EqualFold(r.URL.Query().Get("charset"), charsetShiftJIS) {
		body, err = encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()).String(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		contentType = "text/csv; charset=Shift_JIS"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"kotlens-%s.csv\"", report.Period.Key()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write csv: %v", err)
	}
}

// periodFromQuery reads year and month, or an offset in months from the
// current period. Without either the current period is used.
func (h *Handler) periodFromQuery(r *http.Request) (period.Period, error) {
	query := r.URL.Query()
	if query.Has("year") || query.Has("month") {
		year, yearErr := strconv.Atoi(query.Get("year"))
		month, monthErr := strconv.Atoi(query.Get("month"))
		if yearErr != nil || monthErr != nil {
			return period.Period{}, fmt.Errorf("%w: year and month must both be numbers", period.ErrInvalidPeriod)
		}
		return period.New(year, month)
	}

	current := h.service.CurrentPeriod()
	if offset := query.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return period.Period{}, fmt.Errorf("%w: offset must be a number", period.ErrInvalidPeriod)
		}
		return current.AddMonths(n), nil
	}
	return current, nil
}

package digest_run

import (
	"net/http"
	"strconv"

	"github.com/kotlens/kotlens/internal/rest"
	log "github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListRuns godoc
// @Summary Recent digest runs
// @Param limit query int false "number of runs, 20 by default"
// @Produce json
// @Success 200 {array} RunDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/admin/digest-runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive number")
			return
		}
		limit = min(parsed, maxListLimit)
	}

	runs, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		log.Errorf("Failed to list digest runs: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list digest runs", "")
		return
	}
	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, RunToDTO(run))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

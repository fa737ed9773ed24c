package digest

import (
	"net/http"

	"github.com/kotlens/kotlens/internal/rest"
	"github.com/kotlens/kotlens/pkg/digest_run"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SendReport godoc
// @Summary Send the compliance digest now
// @Security BearerAuth
// @Produce json
// @Success 200 {object} digest_run.RunDTO
// @Failure 502 {object} rest.ErrorResponse
// @Router /api/admin/send-report [post]
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.SendReport(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusBadGateway, "Failed to send report", run.Error)
		return
	}
	rest.WriteJSON(w, http.StatusOK, digest_run.RunToDTO(run))
}

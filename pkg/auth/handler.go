package auth

import (
	"encoding/json"
	"net/http"

	"github.com/kotlens/kotlens/internal/rest"
	log "github.com/sirupsen/logrus"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type StatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

type Handler struct {
	auth *Authenticator
}

func NewHandler(auth *Authenticator) *Handler {
	return &Handler{auth: auth}
}

// Login godoc
// @Summary Start a dashboard session
// @Accept json
// @Produce json
// @Param request body LoginRequest true "dashboard password"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if !h.auth.Verify(req.Password) {
		log.Infof("Rejected dashboard login from %s", r.RemoteAddr)
		rest.WriteError(w, http.StatusUnauthorized, "パスワードが正しくありません", "")
		return
	}
	if err := h.auth.startSession(w, r); err != nil {
		log.Errorf("Failed to save session: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to start session", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Status godoc
// @Summary Whether the caller holds a dashboard session
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/auth/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, StatusResponse{Authenticated: h.auth.IsAuthenticated(r)})
}

// Logout godoc
// @Summary End the dashboard session
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.endSession(w, r); err != nil {
		log.Errorf("Failed to clear session: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to end session", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

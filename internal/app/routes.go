package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kotlens/kotlens/internal/config"
	"github.com/kotlens/kotlens/internal/rest"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Health
	r.HandleFunc("/api/health", health).Methods("GET")

	// Dashboard session
	r.HandleFunc("/api/auth/login", deps.AuthHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/status", deps.AuthHandler.Status).Methods("GET")
	r.HandleFunc("/api/auth/logout", deps.AuthHandler.Logout).Methods("POST")

	// Attendance API passthrough
	r.HandleFunc("/api/employees", deps.KotHandler.ListEmployees).Methods("GET")
	r.HandleFunc("/api/monthly-workings", deps.KotHandler.ListMonthlyWorkings).Methods("GET")
	r.HandleFunc("/api/leave-managements", deps.KotHandler.ListLeaveManagements).Methods("GET")
	r.HandleFunc("/api/leave-managements/{leaveCode}", deps.KotHandler.ListLeaveManagements).Methods("GET")

	// Compliance analysis
	r.HandleFunc("/api/analysis", deps.AnalysisHandler.GetAnalysis).Methods("GET")

	// Digest
	r.HandleFunc("/api/admin/send-report", deps.DigestHandler.SendReport).Methods("POST")
	r.HandleFunc("/api/admin/digest-runs", deps.DigestRunHandler.ListRuns).Methods("GET")

	// Frontend
	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}
}

// health godoc
// @Summary Liveness probe
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "KOT Analysis Server is running"})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/logger"
)

// NewRouter wires the public dashboard endpoints and the token-gated
// administrator endpoints.
func NewRouter(ledger *LedgerHandler, obs *ObservationHandler, auth *AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public: intake, entitlement, gated export, dashboard data.
	api.HandleFunc("/requests", ledger.Submit).Methods("POST")
	api.HandleFunc("/entitlement", ledger.Entitlement).Methods("GET")
	api.HandleFunc("/export", ledger.ExportObservations).Methods("GET")
	api.HandleFunc("/observations/latest", obs.Latest).Methods("GET")
	api.HandleFunc("/observations/stations", obs.Stations).Methods("GET")
	api.HandleFunc("/observations/series", obs.Series).Methods("GET")
	api.HandleFunc("/observations/parameters", obs.Parameters).Methods("GET")

	// Administrator surface.
	api.HandleFunc("/admin/login", ledger.AdminLogin).Methods("POST")
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Middleware)
	admin.HandleFunc("/requests", ledger.ListPending).Methods("GET")
	admin.HandleFunc("/requests/{id}/decide", ledger.Decide).Methods("POST")
	admin.HandleFunc("/audit.csv", ledger.ExportAuditLog).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

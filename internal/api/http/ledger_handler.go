package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/security"
	"github.com/langouL/meteopad/internal/service"
)

// LedgerHandler exposes the access-request ledger and the gated
// observation export.
type LedgerHandler struct {
	ledger service.LedgerService
	obs    service.ObservationService
	tokens security.TokenManager
}

func NewLedgerHandler(ledger service.LedgerService, obs service.ObservationService, tokens security.TokenManager) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, obs: obs, tokens: tokens}
}

type submitRequest struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Email        string `json:"email"`
	Reason       string `json:"reason"`
}

func (h *LedgerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req, err := h.ledger.Submit(r.Context(), body.Name, body.Organization, body.Email, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type entitlementResponse struct {
	State            domain.Entitlement `json:"state"`
	RemainingSeconds int                `json:"remaining_seconds,omitempty"`
	DecidedAt        *time.Time         `json:"decided_at,omitempty"`
}

func (h *LedgerHandler) Entitlement(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email query parameter is required"})
		return
	}

	result, err := h.ledger.CheckEntitlement(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := entitlementResponse{State: result.State}
	if result.Request != nil {
		resp.DecidedAt = result.Request.DecidedAt
	}
	if result.State == domain.EntitlementGranted {
		resp.RemainingSeconds = int(result.Remaining / time.Second)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportObservations serves the observation CSV, but only while the
// caller holds an unexpired grant. The entitlement check is what
// expires stale grants.
func (h *LedgerHandler) ExportObservations(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email query parameter is required"})
		return
	}

	result, err := h.ledger.CheckEntitlement(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.State != domain.EntitlementGranted {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "no active download grant",
			"state": string(result.State),
		})
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	data, err := h.obs.ExportCSV(from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="MeteoMarinePAD.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *LedgerHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	token, err := h.tokens.Authenticate(body.Password)
	if err != nil {
		if errors.Is(err, security.ErrBadCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *LedgerHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.ledger.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []domain.AccessRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

type decideRequest struct {
	Decision domain.Decision `json:"decision"`
}

func (h *LedgerHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body decideRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req, err := h.ledger.Decide(r.Context(), id, body.Decision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *LedgerHandler) ExportAuditLog(w http.ResponseWriter, r *http.Request) {
	data, err := h.ledger.ExportAuditLog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="historique_acces.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/service"
)

const dateParamLayout = "2006-01-02"

// ObservationHandler serves the ungated dashboard data: live
// summaries, map pins, and comparison series.
type ObservationHandler struct {
	obs service.ObservationService
}

func NewObservationHandler(obs service.ObservationService) *ObservationHandler {
	return &ObservationHandler{obs: obs}
}

func (h *ObservationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	n := 3
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}
	summaries := h.obs.Latest(n)
	if summaries == nil {
		summaries = []domain.StationSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *ObservationHandler) Stations(w http.ResponseWriter, r *http.Request) {
	stations := h.obs.Stations()
	if stations == nil {
		stations = []domain.StationStatus{}
	}
	writeJSON(w, http.StatusOK, stations)
}

func (h *ObservationHandler) Series(w http.ResponseWriter, r *http.Request) {
	station := r.URL.Query().Get("station")
	param := r.URL.Query().Get("param")
	if station == "" || param == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "station and param query parameters are required"})
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	points, err := h.obs.Series(station, param, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if points == nil {
		points = []domain.SeriesPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *ObservationHandler) Parameters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.obs.Parameters())
}

// parseDateRange reads optional from/to date query parameters. The to
// bound is inclusive of its whole day.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q, want YYYY-MM-DD", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q, want YYYY-MM-DD", raw)
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

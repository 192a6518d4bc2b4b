package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lox/picnicweather/internal/forecast"
	"github.com/lox/picnicweather/internal/ingest"
	"github.com/lox/picnicweather/internal/location"
	"github.com/lox/picnicweather/internal/store"
)

func (s *Server) handleAPIForecast(w http.ResponseWriter, r *http.Request) {
	coord, err := s.coordinateFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	days, err := s.Forecast.Fetch(r.Context(), coord)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecastResponse{Coordinate: coord, Days: days})
}

func (s *Server) handleAPIHistorical(w http.ResponseWriter, r *http.Request) {
	coord, err := s.coordinateFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	days, err := s.Historical.Fetch(r.Context(), coord)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historicalResponse{Coordinate: coord, Days: days})
}

func (s *Server) handleAPIDay(w http.ResponseWriter, r *http.Request) {
	coord, err := s.coordinateFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	days, err := s.Forecast.Fetch(r.Context(), coord)
	if err != nil {
		writeError(w, err)
		return
	}
	day, ok := forecast.FindDay(days, date)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no forecast for " + date.Format("2006-01-02")})
		return
	}

	resp := dayResponse{Coordinate: coord}
	history, err := s.Historical.Fetch(r.Context(), coord)
	if err != nil {
		resp.HistoricalError = err.Error()
	}
	resp.Day = forecast.MergeDay(day, history)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIIngestHealth(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingest auditing is disabled"})
		return
	}

	health, err := s.Store.GetIngestHealth(7)
	if err != nil {
		writeError(w, err)
		return
	}
	failures, err := s.Store.GetRecentIngestErrors(10)
	if err != nil {
		writeError(w, err)
		return
	}

	type recentError struct {
		StartedAt string `json:"startedAt"`
		Endpoint  string `json:"endpoint"`
		Location  string `json:"location,omitempty"`
		Error     string `json:"error"`
	}
	recent := make([]recentError, 0, len(failures))
	for _, f := range failures {
		recent = append(recent, recentError{
			StartedAt: f.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Endpoint:  f.Endpoint,
			Location:  f.LocationKey.String,
			Error:     f.ErrorMessage.String,
		})
	}
	if health == nil {
		health = []store.IngestHealthSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":         health,
		"recentErrors": recent,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.Planner.Snapshot()

	health := HealthStatus{
		Status:       "ok",
		Coordinate:   snap.Coordinate,
		Loading:      snap.Loading,
		ForecastDays: len(snap.Forecast),
	}
	if !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt
		health.UpdatedAt = &t
	}
	if snap.ForecastErr != nil {
		health.ForecastErr = snap.ForecastErr.Error()
		health.Status = "degraded"
	}
	if snap.HistoricalErr != nil {
		health.HistoricalErr = snap.HistoricalErr.Error()
		health.Status = "degraded"
	}

	writeJSON(w, http.StatusOK, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeError maps fetch, location and validation failures to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var fe *ingest.FetchError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.As(err, &fe):
		status = http.StatusBadGateway
	case errors.Is(err, location.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

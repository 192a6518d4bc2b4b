package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/lox/picnicweather/internal/forecast"
	"github.com/lox/picnicweather/internal/location"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.Planner.Snapshot()
	if snap.UpdatedAt.IsZero() && !snap.Loading {
		s.refreshInBackground()
		snap.Loading = true
	}

	data := IndexData{
		Coordinate: snap.Coordinate,
		Loading:    snap.Loading,
		UpdatedAt:  snap.UpdatedAt,
		Notice:     r.URL.Query().Get("notice"),
	}
	switch {
	case snap.Loading:
	case snap.ForecastErr != nil:
		data.Error = snap.ForecastErr.Error()
	default:
		data.Days = dayCards(snap.Forecast)
	}

	s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap := s.Planner.Snapshot()
	if snap.Forecast == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	day, ok := forecast.FindDay(snap.Forecast, date)
	if !ok {
		http.Error(w, "no forecast for "+date.Format("2006-01-02"), http.StatusNotFound)
		return
	}

	data := DayData{
		Coordinate: snap.Coordinate,
		Day:        forecast.MergeDay(day, snap.Historical),
		Palette:    forecast.GetPalette(day.Condition),
	}
	if snap.HistoricalErr != nil {
		data.HistoryError = snap.HistoricalErr.Error()
	}
	s.render(w, http.StatusOK, "day.html", data)
}

// handleLocation changes the planner coordinate from a form post with either
// lat and lon, a city name, or auto=1 for IP geolocation.
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		changed bool
		err     error
	)
	switch city := strings.TrimSpace(r.PostForm.Get("city")); {
	case r.PostForm.Get("auto") != "":
		_, changed, err = s.Planner.Locate(r.Context())
	case city != "":
		if s.Geocoder == nil {
			err = errors.New("city lookup is not configured")
			break
		}
		_, changed, err = s.Planner.LocateWith(r.Context(), location.NewCitySource(s.Geocoder, city))
	default:
		c, ok, perr := parseCoordinate(r.PostForm)
		if perr == nil && !ok {
			perr = badRequest("lat and lon are required")
		}
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		changed = s.Planner.SetCoordinate(c)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, location.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	if changed {
		s.refreshInBackground()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("api: render %s: %v", name, err)
	}
}

package api

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/picnicweather/internal/openmeteo"
	"github.com/lox/picnicweather/internal/planner"
	"github.com/lox/picnicweather/internal/store"
)

// Deps are the components the server reads from. Store and Geocoder may be
// nil, which disables /api/ingest-health and city lookups respectively.
type Deps struct {
	Planner    *planner.Planner
	Forecast   planner.ForecastSource
	Historical planner.HistoricalSource
	Store      *store.Store
	Geocoder   *openmeteo.Client
}

type Server struct {
	Deps
	port string
	loc  *time.Location
	tmpl *template.Template

	baseCtx    context.Context
	refreshing atomic.Bool
}

func NewServer(deps Deps, port string, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{
		Deps:    deps,
		port:    port,
		loc:     loc,
		tmpl:    newTemplates(),
		baseCtx: context.Background(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /day", s.handleDay)
	mux.HandleFunc("POST /location", s.handleLocation)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/forecast", s.handleAPIForecast)
	mux.HandleFunc("GET /api/historical", s.handleAPIHistorical)
	mux.HandleFunc("GET /api/day", s.handleAPIDay)
	mux.HandleFunc("GET /api/ingest-health", s.handleAPIIngestHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return requestIDMiddleware(loggingMiddleware(mux))
}

func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// refreshInBackground starts a planner refresh unless one started by the
// server is already running. A running refresh that gets superseded retries
// for the new coordinate.
func (s *Server) refreshInBackground() {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.refreshing.Store(false)
		for {
			result := s.Planner.Refresh(s.baseCtx)
			// a coordinate change while running needs another pass
			if result.Superseded && s.baseCtx.Err() == nil {
				continue
			}
			if result.ForecastErr != nil || result.HistoricalErr != nil {
				log.Printf("api: refresh %s: forecast_err=%v historical_err=%v",
					result.Coordinate, result.ForecastErr, result.HistoricalErr)
			}
			return
		}
	}()
}

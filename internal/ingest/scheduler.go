package ingest

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lox/picnicweather/internal/models"
	"github.com/lox/picnicweather/internal/store"
)

// DefaultRefreshInterval is how often the scheduler re-runs both fetches.
const DefaultRefreshInterval = 30 * time.Minute

const sourceOpenMeteo = "open-meteo"

// RefreshResult is the outcome of one forecast + historical refresh.
type RefreshResult struct {
	Coordinate     models.Coordinate
	ForecastDays   int
	HistoricalDays int
	ForecastErr    error
	HistoricalErr  error
	// Superseded is set when the coordinate changed while the refresh ran
	// and its results were discarded.
	Superseded bool
}

// Refresher runs both fetches for the current coordinate.
type Refresher interface {
	Refresh(ctx context.Context) RefreshResult
}

// Scheduler periodically refreshes the current coordinate so its cache
// entries stay warm, and records every run in ingest_runs.
type Scheduler struct {
	store    *store.Store
	target   Refresher
	interval time.Duration
}

// NewScheduler returns a scheduler. st may be nil to skip run auditing.
func NewScheduler(st *store.Store, target Refresher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler{store: st, target: target, interval: interval}
}

// Run refreshes immediately and then every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()

	if _, err := cron.Every(s.interval).Do(func() { s.RefreshOnce(ctx) }); err != nil {
		return err
	}

	log.Printf("scheduler: refreshing every %s", s.interval)
	cron.StartAsync()

	<-ctx.Done()
	cron.Stop()
	log.Println("scheduler: shutting down")
	return nil
}

// RefreshOnce runs one refresh and records it.
func (s *Scheduler) RefreshOnce(ctx context.Context) RefreshResult {
	forecastRun := s.startRun("forecast")
	historicalRun := s.startRun("historical")

	result := s.target.Refresh(ctx)

	s.completeRun(forecastRun, result.Coordinate, result.ForecastDays, result.ForecastErr)
	s.completeRun(historicalRun, result.Coordinate, result.HistoricalDays, result.HistoricalErr)

	switch {
	case result.Superseded:
		log.Printf("scheduler: refresh of %s superseded by a location change", result.Coordinate)
	case result.ForecastErr != nil || result.HistoricalErr != nil:
		log.Printf("scheduler: refresh of %s: forecast_err=%v historical_err=%v",
			result.Coordinate, result.ForecastErr, result.HistoricalErr)
	default:
		log.Printf("scheduler: refreshed %s: %d forecast days, %d historical days",
			result.Coordinate, result.ForecastDays, result.HistoricalDays)
	}
	return result
}

func (s *Scheduler) startRun(endpoint string) *store.IngestRun {
	if s.store == nil {
		return nil
	}
	run, err := s.store.StartIngestRun(sourceOpenMeteo, endpoint, nil)
	if err != nil {
		log.Printf("scheduler: start ingest run: %v", err)
		return nil
	}
	return run
}

func (s *Scheduler) completeRun(run *store.IngestRun, coord models.Coordinate, records int, err error) {
	if run == nil {
		return
	}
	run.LocationKey = sql.NullString{String: coord.String(), Valid: true}
	run.Records = sql.NullInt64{Int64: int64(records), Valid: true}
	run.Success = err == nil
	if err != nil {
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	}
	if err := s.store.CompleteIngestRun(run); err != nil {
		log.Printf("scheduler: complete ingest run: %v", err)
	}
}

// Package planner holds the current coordinate and the latest forecast and
// historical results for it. Changing the coordinate supersedes any refresh
// still running for the old one.
package planner

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/lox/picnicweather/internal/ingest"
	"github.com/lox/picnicweather/internal/location"
	"github.com/lox/picnicweather/internal/models"
)

type ForecastSource interface {
	Fetch(ctx context.Context, coord models.Coordinate) ([]models.DailyForecast, error)
}

type HistoricalSource interface {
	Fetch(ctx context.Context, coord models.Coordinate) ([]models.DailyHistoricalAverage, error)
}

// Snapshot is what the presentation layer renders. Forecast and Historical
// are nil when their fetch failed or has not completed.
type Snapshot struct {
	Coordinate    models.Coordinate
	Forecast      []models.DailyForecast
	Historical    []models.DailyHistoricalAverage
	ForecastErr   error
	HistoricalErr error
	Loading       bool
	UpdatedAt     time.Time
}

type Planner struct {
	forecast   ForecastSource
	historical HistoricalSource
	resolver   *location.Resolver
	now        func() time.Time

	mu        sync.Mutex
	coord     models.Coordinate
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc
	pending   int
	snap      Snapshot
}

// New starts at the resolver's default coordinate.
func New(forecast ForecastSource, historical HistoricalSource, resolver *location.Resolver, now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	p := &Planner{
		forecast:   forecast,
		historical: historical,
		resolver:   resolver,
		now:        now,
		coord:      resolver.Default(),
		gen:        1,
	}
	p.genCtx, p.genCancel = context.WithCancel(context.Background())
	p.snap.Coordinate = p.coord
	return p
}

// Coordinate returns the current coordinate.
func (p *Planner) Coordinate() models.Coordinate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.coord
}

// Snapshot returns a copy of the latest state.
func (p *Planner) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.snap
	s.Forecast = slices.Clone(p.snap.Forecast)
	s.Historical = slices.Clone(p.snap.Historical)
	return s
}

// SetCoordinate makes c current. It reports false and does nothing if c is
// already current. Otherwise refreshes running for the previous coordinate
// are cancelled and their results will be discarded; the caller starts the
// next Refresh.
func (p *Planner) SetCoordinate(c models.Coordinate) bool {
	c = c.Rounded(2)

	p.mu.Lock()
	defer p.mu.Unlock()

	if c == p.coord {
		return false
	}

	p.genCancel()
	p.genCtx, p.genCancel = context.WithCancel(context.Background())
	p.gen++
	p.coord = c
	p.pending = 0
	p.snap = Snapshot{Coordinate: c, Loading: true}

	log.Printf("planner: coordinate changed to %s", c)
	return true
}

// Refresh fetches the forecast and historical averages for the current
// coordinate concurrently. Results for a coordinate that is no longer
// current are returned with Superseded set and not stored.
func (p *Planner) Refresh(ctx context.Context) ingest.RefreshResult {
	p.mu.Lock()
	coord, gen, genCtx := p.coord, p.gen, p.genCtx
	p.pending++
	p.snap.Loading = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(genCtx, cancel)
	defer stop()

	result := ingest.RefreshResult{Coordinate: coord}
	var (
		days []models.DailyForecast
		avgs []models.DailyHistoricalAverage
	)

	// the two fetches fail independently, so neither cancels the other
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		days, result.ForecastErr = p.forecast.Fetch(ctx, coord)
		result.ForecastDays = len(days)
	}()
	go func() {
		defer wg.Done()
		avgs, result.HistoricalErr = p.historical.Fetch(ctx, coord)
		result.HistoricalDays = len(avgs)
	}()
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		result.Superseded = true
		return result
	}

	p.pending--
	p.snap = Snapshot{
		Coordinate:    coord,
		Forecast:      days,
		Historical:    avgs,
		ForecastErr:   result.ForecastErr,
		HistoricalErr: result.HistoricalErr,
		Loading:       p.pending > 0,
		UpdatedAt:     p.now(),
	}
	return result
}

// Locate resolves the host position and makes it current. On failure the
// current coordinate is kept and the error, wrapping
// location.ErrUnavailable, is returned.
func (p *Planner) Locate(ctx context.Context) (models.Coordinate, bool, error) {
	return p.locate(ctx, p.resolver.Resolve)
}

// LocateWith is Locate with an explicit source, such as a city lookup.
func (p *Planner) LocateWith(ctx context.Context, source location.Source) (models.Coordinate, bool, error) {
	return p.locate(ctx, func(ctx context.Context) (models.Coordinate, error) {
		return location.Resolve(ctx, source)
	})
}

func (p *Planner) locate(ctx context.Context, resolve func(context.Context) (models.Coordinate, error)) (models.Coordinate, bool, error) {
	c, err := resolve(ctx)
	if err != nil {
		log.Printf("planner: locate: %v", err)
		return p.Coordinate(), false, err
	}
	return c, p.SetCoordinate(c), nil
}

package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/picnicweather/internal/cache"
	"github.com/lox/picnicweather/internal/forecast"
	"github.com/lox/picnicweather/internal/models"
	"github.com/lox/picnicweather/internal/obs"
	"github.com/lox/picnicweather/internal/openmeteo"
)

// DefaultArchiveConcurrency bounds the parallel archive requests.
const DefaultArchiveConcurrency = 4

var historicalVariables = []string{
	openmeteo.VarTemperatureMean,
	openmeteo.VarRainSum,
	openmeteo.VarWindSpeedMean,
	openmeteo.VarHumidityMean,
}

// HistoricalAverager averages the same 14 calendar days over the previous
// ten years. One failed year fails the whole operation.
type HistoricalAverager struct {
	client      *openmeteo.Client
	cache       *cache.TTL
	loc         *time.Location
	now         func() time.Time
	concurrency int
}

func NewHistoricalAverager(client *openmeteo.Client, ttl *cache.TTL, loc *time.Location, now func() time.Time, concurrency int) *HistoricalAverager {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	if concurrency <= 0 {
		concurrency = DefaultArchiveConcurrency
	}
	return &HistoricalAverager{client: client, cache: ttl, loc: loc, now: now, concurrency: concurrency}
}

func (h *HistoricalAverager) Fetch(ctx context.Context, coord models.Coordinate) (avgs []models.DailyHistoricalAverage, err error) {
	defer obs.Time(ctx, "historical")(&err)

	key := cache.Key(cache.KindHistorical, coord)
	if h.cache != nil {
		var cached []models.DailyHistoricalAverage
		if h.cache.Load(ctx, key, &cached) {
			return cached, nil
		}
	}

	horizon := forecast.Horizon(forecast.Today(h.now(), h.loc))

	years := make([]*openmeteo.DailyResponse, forecast.HistoricalYears)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for k := 1; k <= forecast.HistoricalYears; k++ {
		start, end := forecast.YearRange(horizon, k)
		g.Go(func() error {
			resp, err := h.client.Archive(gctx, coord, historicalVariables, start, end)
			if err != nil {
				return fmt.Errorf("year %d: %w", start.Year(), err)
			}
			years[k-1] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fetchFailed("historical", err)
	}

	acc := forecast.NewAccumulator()
	for _, resp := range years {
		if err := accumulate(acc, resp); err != nil {
			return nil, fetchFailed("historical", err)
		}
	}
	avgs = acc.Averages(horizon)

	if h.cache != nil {
		if err := h.cache.Save(ctx, key, avgs); err != nil {
			log.Printf("ingest: %v", err)
		}
	}
	return avgs, nil
}

func accumulate(acc *forecast.Accumulator, resp *openmeteo.DailyResponse) error {
	temps, err := resp.Variable(openmeteo.VarTemperatureMean)
	if err != nil {
		return err
	}
	rains, err := resp.Variable(openmeteo.VarRainSum)
	if err != nil {
		return err
	}
	winds, err := resp.Variable(openmeteo.VarWindSpeedMean)
	if err != nil {
		return err
	}
	humidities, err := resp.Variable(openmeteo.VarHumidityMean)
	if err != nil {
		return err
	}

	days, err := resp.Days()
	if err != nil {
		return err
	}
	for i, day := range days {
		acc.Add(day, temps[i], rains[i], winds[i], humidities[i])
	}
	return nil
}

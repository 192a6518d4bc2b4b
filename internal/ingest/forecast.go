package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lox/picnicweather/internal/cache"
	"github.com/lox/picnicweather/internal/forecast"
	"github.com/lox/picnicweather/internal/metrics"
	"github.com/lox/picnicweather/internal/models"
	"github.com/lox/picnicweather/internal/obs"
	"github.com/lox/picnicweather/internal/openmeteo"
)

// forecastRequestDays is one more than the horizon so a stale leading day
// from the provider can be dropped.
const forecastRequestDays = forecast.HorizonDays + 1

var forecastVariables = []string{
	openmeteo.VarTemperatureMean,
	openmeteo.VarRainSum,
	openmeteo.VarPrecipProbabilityMean,
	openmeteo.VarHumidityMean,
	openmeteo.VarWindSpeedMean,
}

// ForecastFetcher returns the classified 14-day forecast for a coordinate,
// served from cache while the cached copy is fresh.
type ForecastFetcher struct {
	client *openmeteo.Client
	cache  *cache.TTL
	loc    *time.Location
	now    func() time.Time
}

// NewForecastFetcher builds a fetcher. ttl may be nil to disable caching;
// loc decides which calendar day is "today".
func NewForecastFetcher(client *openmeteo.Client, ttl *cache.TTL, loc *time.Location, now func() time.Time) *ForecastFetcher {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &ForecastFetcher{client: client, cache: ttl, loc: loc, now: now}
}

func (f *ForecastFetcher) Fetch(ctx context.Context, coord models.Coordinate) (days []models.DailyForecast, err error) {
	defer obs.Time(ctx, "forecast")(&err)

	key := cache.Key(cache.KindForecast, coord)
	if f.cache != nil {
		var cached []models.DailyForecast
		if f.cache.Load(ctx, key, &cached) {
			return cached, nil
		}
	}

	resp, err := f.client.Forecast(ctx, coord, forecastVariables, forecastRequestDays)
	if err != nil {
		return nil, fetchFailed("forecast", err)
	}

	days, err = parseForecast(resp, forecast.Today(f.now(), f.loc))
	if err != nil {
		return nil, fetchFailed("forecast", err)
	}

	for _, d := range days {
		metrics.DaysClassified.WithLabelValues(string(d.Condition)).Inc()
	}

	if f.cache != nil {
		if err := f.cache.Save(ctx, key, days); err != nil {
			log.Printf("ingest: %v", err)
		}
	}
	return days, nil
}

// parseForecast zips the daily arrays into records, drops days before today
// and keeps exactly HorizonDays. Null values are tolerated only in dropped days.
func parseForecast(resp *openmeteo.DailyResponse, today time.Time) ([]models.DailyForecast, error) {
	dates, err := resp.Days()
	if err != nil {
		return nil, err
	}

	temps, err := resp.Variable(openmeteo.VarTemperatureMean)
	if err != nil {
		return nil, err
	}
	rains, err := resp.Variable(openmeteo.VarRainSum)
	if err != nil {
		return nil, err
	}
	chances, err := resp.Variable(openmeteo.VarPrecipProbabilityMean)
	if err != nil {
		return nil, err
	}
	humidities, err := resp.Variable(openmeteo.VarHumidityMean)
	if err != nil {
		return nil, err
	}
	winds, err := resp.Variable(openmeteo.VarWindSpeedMean)
	if err != nil {
		return nil, err
	}

	days := make([]models.DailyForecast, 0, forecast.HorizonDays)
	for i, date := range dates {
		if date.Before(today) {
			continue
		}
		if len(days) == forecast.HorizonDays {
			break
		}

		values := map[string]*float64{
			openmeteo.VarTemperatureMean:       temps[i],
			openmeteo.VarRainSum:               rains[i],
			openmeteo.VarPrecipProbabilityMean: chances[i],
			openmeteo.VarHumidityMean:          humidities[i],
			openmeteo.VarWindSpeedMean:         winds[i],
		}
		for name, v := range values {
			if v == nil {
				return nil, fmt.Errorf("null %s on %s", name, date.Format("2006-01-02"))
			}
		}

		day := models.DailyForecast{
			Date:            date,
			Temp:            *temps[i],
			RainInch:        *rains[i],
			RainChance:      *chances[i],
			HumidityPercent: *humidities[i],
			WindSpeed:       *winds[i],
		}
		if flags := ValidateForecastDay(&day); len(flags) > 0 {
			log.Printf("ingest: forecast %s flagged: %v", date.Format("2006-01-02"), flags)
		}
		forecast.ClassifyDay(&day)
		days = append(days, day)
	}

	if len(days) < forecast.HorizonDays {
		return nil, fmt.Errorf("short response: %d days from %s, need %d",
			len(days), today.Format("2006-01-02"), forecast.HorizonDays)
	}
	return days, nil
}

func fetchFailed(op string, err error) error {
	metrics.FetchErrors.WithLabelValues(op).Inc()
	return &FetchError{Op: op, Err: err}
}

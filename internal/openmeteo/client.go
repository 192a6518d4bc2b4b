package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/lox/picnicweather/internal/httputil"
	"github.com/lox/picnicweather/internal/metrics"
	"github.com/lox/picnicweather/internal/models"
)

const (
	ForecastURL  = "https://api.open-meteo.com/v1/forecast"
	ArchiveURL   = "https://archive-api.open-meteo.com/v1/archive"
	GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

// Daily variables requested from the forecast and archive endpoints.
const (
	VarTemperatureMean       = "temperature_2m_mean"
	VarRainSum               = "rain_sum"
	VarPrecipProbabilityMean = "precipitation_probability_mean"
	VarHumidityMean          = "relative_humidity_2m_mean"
	VarWindSpeedMean         = "wind_speed_10m_mean"
)

const dateFormat = "2006-01-02"

var ErrCircuitOpen = errors.New("open-meteo circuit breaker open")

// Config configures a Client. Zero values fall back to the public endpoints,
// a client with httputil.DefaultTimeout and no rate limit.
type Config struct {
	ForecastURL       string
	ArchiveURL        string
	GeocodingURL      string
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the Open-Meteo forecast, archive and geocoding APIs.
// It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	forecastURL  string
	archiveURL   string
	geocodingURL string
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httputil.NewClient(0)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a caller giving up says nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		httpClient:   httpClient,
		forecastURL:  withDefault(cfg.ForecastURL, ForecastURL),
		archiveURL:   withDefault(cfg.ArchiveURL, ArchiveURL),
		geocodingURL: withDefault(cfg.GeocodingURL, GeocodingURL),
		limiter:      limiter,
		breaker:      breaker,
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Forecast requests days of daily aggregates in °F, inches and mph.
func (c *Client) Forecast(ctx context.Context, coord models.Coordinate, variables []string, days int) (*DailyResponse, error) {
	values := baseParams(coord, variables)
	values.Set("forecast_days", strconv.Itoa(days))

	var resp DailyResponse
	if err := c.get(ctx, "forecast", c.forecastURL, values, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Archive requests daily aggregates for the inclusive date range [start, end].
func (c *Client) Archive(ctx context.Context, coord models.Coordinate, variables []string, start, end time.Time) (*DailyResponse, error) {
	values := baseParams(coord, variables)
	values.Set("start_date", start.Format(dateFormat))
	values.Set("end_date", end.Format(dateFormat))

	var resp DailyResponse
	if err := c.get(ctx, "archive", c.archiveURL, values, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func baseParams(coord models.Coordinate, variables []string) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	values.Set("daily", strings.Join(variables, ","))
	values.Set("timezone", "auto")
	values.Set("temperature_unit", "fahrenheit")
	values.Set("precipitation_unit", "inch")
	values.Set("wind_speed_unit", "mph")
	return values
}

// GeocodeResult is the best match for a place name.
type GeocodeResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

var ErrPlaceNotFound = errors.New("city not found")

// Geocode returns the first geocoding match for name.
func (c *Client) Geocode(ctx context.Context, name string) (*GeocodeResult, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")

	var resp struct {
		Results []GeocodeResult `json:"results"`
	}
	if err := c.get(ctx, "geocoding", c.geocodingURL, values, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPlaceNotFound, name)
	}
	return &resp.Results[0], nil
}

func (c *Client) get(ctx context.Context, endpoint, baseURL string, values url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, baseURL+"?"+values.Encode())
	})
	metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "circuit_open").Inc()
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(endpoint, statusLabel(err)).Inc()
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	metrics.UpstreamCallsTotal.WithLabelValues(endpoint, "200").Inc()

	body := result.([]byte)
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

func statusLabel(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return strconv.Itoa(se.StatusCode)
	}
	return "error"
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", httputil.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Reason string `json:"reason"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return nil, &StatusError{StatusCode: resp.StatusCode, Reason: apiErr.Reason}
	}
	return body, nil
}

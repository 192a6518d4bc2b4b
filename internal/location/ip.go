package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lox/picnicweather/internal/httputil"
	"github.com/lox/picnicweather/internal/models"
)

// DefaultGeoIPURL returns the caller's approximate position from its address.
const DefaultGeoIPURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// IPSource locates the host by its public IP address.
type IPSource struct {
	url    string
	client *http.Client
}

func NewIPSource(url string, client *http.Client) *IPSource {
	if url == "" {
		url = DefaultGeoIPURL
	}
	if client == nil {
		client = httputil.NewClient(0)
	}
	return &IPSource{url: url, client: client}
}

type geoIPResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (s *IPSource) Locate(ctx context.Context) (models.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", httputil.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geoip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinate{}, fmt.Errorf("geoip: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("geoip: read body: %w", err)
	}

	var data geoIPResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return models.Coordinate{}, fmt.Errorf("geoip: unmarshal: %w", err)
	}
	if data.Status != "success" {
		if data.Message == "" {
			data.Message = data.Status
		}
		return models.Coordinate{}, fmt.Errorf("geoip: %s", data.Message)
	}
	return models.Coordinate{Latitude: data.Lat, Longitude: data.Lon}, nil
}

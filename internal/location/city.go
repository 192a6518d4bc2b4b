package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/lox/picnicweather/internal/models"
	"github.com/lox/picnicweather/internal/openmeteo"
)

// CitySource looks a place name up with the Open-Meteo geocoding API.
type CitySource struct {
	client *openmeteo.Client
	name   string
}

func NewCitySource(client *openmeteo.Client, name string) *CitySource {
	return &CitySource{client: client, name: strings.TrimSpace(name)}
}

func (s *CitySource) Locate(ctx context.Context) (models.Coordinate, error) {
	if s.name == "" {
		return models.Coordinate{}, fmt.Errorf("empty city name")
	}
	res, err := s.client.Geocode(ctx, s.name)
	if err != nil {
		return models.Coordinate{}, err
	}
	return models.Coordinate{Latitude: res.Latitude, Longitude: res.Longitude}, nil
}

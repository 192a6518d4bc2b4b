// Package location resolves the coordinate the forecast is fetched for.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/picnicweather/internal/models"
)

// ErrUnavailable is returned when no geolocation source is configured or the
// source could not produce a position.
var ErrUnavailable = errors.New("location unavailable")

// Source produces the current position.
type Source interface {
	Locate(ctx context.Context) (models.Coordinate, error)
}

// Resolver turns a Source into a coordinate rounded to two decimal places.
// It never substitutes the fallback on failure; callers decide that.
type Resolver struct {
	source   Source
	fallback models.Coordinate
}

func NewResolver(source Source, fallback models.Coordinate) *Resolver {
	return &Resolver{source: source, fallback: fallback.Rounded(2)}
}

// Default is the coordinate used before any location has been resolved.
func (r *Resolver) Default() models.Coordinate {
	return r.fallback
}

func (r *Resolver) Resolve(ctx context.Context) (models.Coordinate, error) {
	return Resolve(ctx, r.source)
}

// Resolve locates with source and rounds the result.
func Resolve(ctx context.Context, source Source) (models.Coordinate, error) {
	if source == nil {
		return models.Coordinate{}, fmt.Errorf("%w: no geolocation source", ErrUnavailable)
	}
	c, err := source.Locate(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return models.Coordinate{}, err
		}
		return models.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return models.Coordinate{}, fmt.Errorf("%w: position %v out of range", ErrUnavailable, c)
	}
	return c.Rounded(2), nil
}

// Static always returns the same coordinate.
type Static models.Coordinate

func (s Static) Locate(context.Context) (models.Coordinate, error) {
	return models.Coordinate(s), nil
}

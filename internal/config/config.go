// Package config holds the runtime settings shared by every command.
// Values come from flags, then PICNIC_* environment variables, then a .env
// file loaded before parsing.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/lox/picnicweather/internal/models"
)

// DefaultEnvFile is loaded when --env-file is not given.
const DefaultEnvFile = ".env"

// Config is embedded into the kong CLI. Tags carry both the kong defaults and
// the validation rules.
type Config struct {
	EnvFile string `name:"env-file" help:"Load environment from this file before parsing." default:".env" env:"PICNIC_ENV_FILE"`

	DB           string `name:"db" help:"SQLite database path." default:"data/picnicweather.db" env:"PICNIC_DB" validate:"required"`
	CacheBackend string `name:"cache-backend" help:"Cache store: memory, sqlite, redis or postgres." default:"sqlite" env:"PICNIC_CACHE_BACKEND" validate:"oneof=memory sqlite redis postgres"`
	RedisAddr    string `name:"redis-addr" help:"Redis address for the redis cache backend." default:"localhost:6379" env:"PICNIC_REDIS_ADDR" validate:"required_if=CacheBackend redis"`
	PostgresDSN  string `name:"postgres-dsn" help:"Postgres URL for the postgres cache backend." env:"PICNIC_POSTGRES_DSN" validate:"required_if=CacheBackend postgres"`

	TZ       string        `name:"tz" help:"IANA time zone that decides local today." default:"Local" env:"PICNIC_TZ"`
	Timeout  time.Duration `name:"timeout" help:"Upstream HTTP timeout." default:"15s" env:"PICNIC_TIMEOUT" validate:"gt=0"`
	CacheTTL time.Duration `name:"cache-ttl" help:"How long cached results are reused." default:"1h" env:"PICNIC_CACHE_TTL" validate:"gt=0"`

	DefaultLat float64 `name:"default-lat" help:"Latitude used before a location is resolved." default:"40.4406" env:"PICNIC_DEFAULT_LAT" validate:"gte=-90,lte=90"`
	DefaultLon float64 `name:"default-lon" help:"Longitude used before a location is resolved." default:"-79.9959" env:"PICNIC_DEFAULT_LON" validate:"gte=-180,lte=180"`

	ForecastURL  string `name:"forecast-url" help:"Open-Meteo forecast endpoint." default:"https://api.open-meteo.com/v1/forecast" env:"PICNIC_FORECAST_URL" validate:"url"`
	ArchiveURL   string `name:"archive-url" help:"Open-Meteo archive endpoint." default:"https://archive-api.open-meteo.com/v1/archive" env:"PICNIC_ARCHIVE_URL" validate:"url"`
	GeocodingURL string `name:"geocoding-url" help:"Open-Meteo geocoding endpoint." default:"https://geocoding-api.open-meteo.com/v1/search" env:"PICNIC_GEOCODING_URL" validate:"url"`
	GeoIPURL     string `name:"geoip-url" help:"IP geolocation endpoint." default:"http://ip-api.com/json/?fields=status,message,lat,lon" env:"PICNIC_GEOIP_URL" validate:"url"`

	ArchiveRPS         float64 `name:"archive-rps" help:"Open-Meteo requests per second (0 = unlimited)." default:"5" env:"PICNIC_ARCHIVE_RPS" validate:"gte=0"`
	ArchiveConcurrency int     `name:"archive-concurrency" help:"Parallel archive requests." default:"4" env:"PICNIC_ARCHIVE_CONCURRENCY" validate:"gte=1,lte=10"`
}

var validate = validator.New()

// Validate checks ranges and cross-field rules and that TZ names a zone.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location loads TZ. "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TZ == "" || c.TZ == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid tz %q: %w", c.TZ, err)
	}
	return loc, nil
}

// DefaultCoordinate is the configured fallback position.
func (c *Config) DefaultCoordinate() models.Coordinate {
	return models.Coordinate{Latitude: c.DefaultLat, Longitude: c.DefaultLon}
}

// LoadEnv loads the env file named by --env-file (or PICNIC_ENV_FILE) in args
// into the process environment without overriding variables already set.
// A missing file is ignored.
func LoadEnv(args []string) {
	path := EnvFileFromArgs(args)
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: no env file loaded from %s: %v", path, err)
	}
}

// EnvFileFromArgs finds --env-file before kong parses the command line.
func EnvFileFromArgs(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--env-file="); ok {
			return v
		}
		if a == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("PICNIC_ENV_FILE"); v != "" {
		return v
	}
	return DefaultEnvFile
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lox/picnicweather/internal/cache"
	"github.com/lox/picnicweather/internal/config"
	"github.com/lox/picnicweather/internal/httputil"
	"github.com/lox/picnicweather/internal/ingest"
	"github.com/lox/picnicweather/internal/location"
	"github.com/lox/picnicweather/internal/openmeteo"
	"github.com/lox/picnicweather/internal/planner"
	"github.com/lox/picnicweather/internal/store"
)

// memoryRetention bounds how long the memory backend holds an entry after
// it has gone stale.
const memoryRetention = 24 * time.Hour

// app is the wired component graph shared by every command.
type app struct {
	cfg        *config.Config
	loc        *time.Location
	httpClient *http.Client
	client     *openmeteo.Client
	store      *store.Store
	ttl        *cache.TTL
	forecast   *ingest.ForecastFetcher
	historical *ingest.HistoricalAverager

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc}

	db, err := store.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	a.store = store.New(db)
	if err := a.store.Migrate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	backend, err := a.cacheStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ttl = cache.NewTTL(backend, cfg.CacheTTL, nil)

	a.httpClient = httputil.NewClient(cfg.Timeout)
	a.client = openmeteo.NewClient(openmeteo.Config{
		ForecastURL:       cfg.ForecastURL,
		ArchiveURL:        cfg.ArchiveURL,
		GeocodingURL:      cfg.GeocodingURL,
		HTTPClient:        a.httpClient,
		RequestsPerSecond: cfg.ArchiveRPS,
		Burst:             cfg.ArchiveConcurrency,
	})

	a.forecast = ingest.NewForecastFetcher(a.client, a.ttl, loc, nil)
	a.historical = ingest.NewHistoricalAverager(a.client, a.ttl, loc, nil, cfg.ArchiveConcurrency)
	return a, nil
}

func (a *app) cacheStore(ctx context.Context) (cache.Store, error) {
	log.Printf("cache: using %s backend", a.cfg.CacheBackend)

	switch a.cfg.CacheBackend {
	case "memory":
		return cache.NewMemoryStore(memoryRetention), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", a.cfg.RedisAddr, err)
		}
		return cache.NewRedisStore(client, memoryRetention), nil

	case "postgres":
		db, err := cache.OpenPostgres(a.cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		pg := cache.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		return pg, nil

	default:
		return a.store, nil
	}
}

// ipSource is the host geolocation source.
func (a *app) ipSource() location.Source {
	return location.NewIPSource(a.cfg.GeoIPURL, a.httpClient)
}

func (a *app) planner() *planner.Planner {
	resolver := location.NewResolver(a.ipSource(), a.cfg.DefaultCoordinate())
	return planner.New(a.forecast, a.historical, resolver, nil)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
	a.closers = nil
}

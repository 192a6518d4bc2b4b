package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lox/picnicweather/internal/metrics"
)

// TTL reads and writes entries through a Store, treating anything older than
// ttl as absent. It is safe for concurrent use if the Store is.
type TTL struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewTTL returns a TTL cache over store. A nil now uses time.Now.
func NewTTL(store Store, ttl time.Duration, now func() time.Time) *TTL {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TTL{store: store, ttl: ttl, now: now}
}

// Load decodes a fresh entry for key into dst and reports whether it did.
// Missing, stale, unreadable and corrupt entries all count as a miss.
func (c *TTL) Load(ctx context.Context, key string, dst any) bool {
	kind := kindOf(key)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("cache: get %s: %v", key, err)
		metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}

	entry, err := Decode(raw)
	if err != nil {
		log.Printf("cache: %s: %v", key, err)
		metrics.CacheLookups.WithLabelValues(kind, "corrupt").Inc()
		return false
	}

	if !Fresh(entry.Timestamp, c.now(), c.ttl) {
		metrics.CacheLookups.WithLabelValues(kind, "stale").Inc()
		return false
	}

	if err := json.Unmarshal(entry.Data, dst); err != nil {
		log.Printf("cache: %s: %v: %v", key, ErrCorrupt, err)
		metrics.CacheLookups.WithLabelValues(kind, "corrupt").Inc()
		return false
	}

	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

// Save stores v under key stamped with the current time.
func (c *TTL) Save(ctx context.Context, key string, v any) error {
	b, err := Encode(c.now(), v)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, key, b); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

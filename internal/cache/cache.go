// Package cache stores fetched day lists as {timestamp, data} JSON blobs
// behind a pluggable key-value Store, and decides freshness with a fixed TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lox/picnicweather/internal/models"
)

// DefaultTTL is how long an entry may be reused before it must be refreshed.
const DefaultTTL = time.Hour

// Kind namespaces cache keys.
type Kind string

const (
	KindForecast   Kind = "forecast"
	KindHistorical Kind = "historical"
)

// Key builds the cache key for a kind and coordinate, e.g. "forecast:40.44:-79.99".
func Key(kind Kind, c models.Coordinate) string {
	return string(kind) + ":" +
		strconv.FormatFloat(c.Latitude, 'f', -1, 64) + ":" +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func kindOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}

// Store is a raw key-value store. Get reports found=false for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ErrCorrupt marks a stored blob that cannot be decoded.
var ErrCorrupt = errors.New("cache entry corrupt")

// Entry is the stored envelope. Timestamp is epoch milliseconds.
type Entry struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Encode wraps v in an Entry stamped with ts.
func Encode(ts time.Time, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal cache data: %w", err)
	}
	return json.Marshal(Entry{Timestamp: ts.UnixMilli(), Data: data})
}

// Decode parses a stored blob. Any failure wraps ErrCorrupt.
func Decode(b []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if e.Timestamp <= 0 || len(e.Data) == 0 {
		return Entry{}, fmt.Errorf("%w: missing timestamp or data", ErrCorrupt)
	}
	return e, nil
}

// Fresh reports whether an entry written at ts may still be used at now.
func Fresh(ts int64, now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-ts < ttl.Milliseconds()
}

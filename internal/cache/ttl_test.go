package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lox/picnicweather/internal/models"
)

type countingStore struct {
	Store
	gets, sets int
	getErr     error
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte) error {
	s.sets++
	return s.Store.Set(ctx, key, value)
}

func TestKey(t *testing.T) {
	c := models.Coordinate{Latitude: 40.44, Longitude: -79.99}
	if got := Key(KindForecast, c); got != "forecast:40.44:-79.99" {
		t.Errorf("Key = %q", got)
	}
	if got := Key(KindHistorical, c); got != "historical:40.44:-79.99" {
		t.Errorf("Key = %q", got)
	}
}

func TestTTL_Freshness(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	now := t0
	c := NewTTL(NewMemoryStore(0), time.Hour, func() time.Time { return now })

	days := []models.DailyForecast{{Date: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Temp: 69.5, Condition: models.ConditionGreen}}
	if err := c.Save(ctx, "forecast:1:2", days); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"immediately", 0, true},
		{"30 minutes", 30 * time.Minute, true},
		{"just before expiry", time.Hour - time.Millisecond, true},
		{"exactly one hour", time.Hour, false},
		{"two hours", 2 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = t0.Add(tt.offset)
			var got []models.DailyForecast
			if ok := c.Load(ctx, "forecast:1:2", &got); ok != tt.want {
				t.Fatalf("Load = %v, want %v", ok, tt.want)
			}
			if tt.want && (len(got) != 1 || got[0].Temp != 69.5 || !got[0].Date.Equal(days[0].Date)) {
				t.Errorf("round trip = %+v", got)
			}
		})
	}
}

func TestTTL_CorruptIsMiss(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore(0)
	c := NewTTL(mem, time.Hour, nil)

	for _, blob := range []string{`not json`, `{"timestamp": 0, "data": []}`, `{"data": []}`} {
		mem.Set(ctx, "k", []byte(blob))
		var dst []models.DailyForecast
		if c.Load(ctx, "k", &dst) {
			t.Errorf("Load(%q) = true, want miss", blob)
		}
	}

	// fresh envelope whose data does not fit the destination
	b, _ := Encode(time.Now(), "a string")
	mem.Set(ctx, "k", b)
	var dst []models.DailyForecast
	if c.Load(ctx, "k", &dst) {
		t.Error("Load with mismatched data = true, want miss")
	}
}

func TestTTL_StoreErrorIsMiss(t *testing.T) {
	s := &countingStore{Store: NewMemoryStore(0), getErr: errors.New("connection refused")}
	c := NewTTL(s, time.Hour, nil)
	var dst []int
	if c.Load(context.Background(), "k", &dst) {
		t.Error("Load = true on store error")
	}
	if s.gets != 1 {
		t.Errorf("gets = %d, want 1", s.gets)
	}
}

func TestDecode(t *testing.T) {
	if _, err := Decode([]byte(`{`)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
	e, err := Decode([]byte(`{"timestamp": 1700000000000, "data": [1,2]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if e.Timestamp != 1700000000000 || string(e.Data) != "[1,2]" {
		t.Errorf("Decode = %+v", e)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Minute)
	v := []byte("abc")
	m.Set(ctx, "k", v)
	v[0] = 'x'

	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "abc" {
		t.Errorf("Get = %q, want abc", got)
	}
	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Error("Get(missing) found")
	}
}

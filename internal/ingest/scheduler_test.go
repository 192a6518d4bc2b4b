package ingest

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/picnicweather/internal/models"
	"github.com/lox/picnicweather/internal/store"
)

type fakeRefresher struct {
	calls  int32
	result RefreshResult
}

func (f *fakeRefresher) Refresh(ctx context.Context) RefreshResult {
	atomic.AddInt32(&f.calls, 1)
	return f.result
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func TestScheduler_RefreshOnceRecordsRuns(t *testing.T) {
	st := setupTestStore(t)
	target := &fakeRefresher{result: RefreshResult{
		Coordinate:   models.Coordinate{Latitude: 40.44, Longitude: -79.99},
		ForecastDays: 14,
		HistoricalErr: &FetchError{
			Op:  "historical",
			Err: errors.New("year 2019: status 500"),
		},
	}}

	s := NewScheduler(st, target, time.Hour)
	result := s.RefreshOnce(context.Background())
	if result.ForecastDays != 14 {
		t.Errorf("ForecastDays = %d, want 14", result.ForecastDays)
	}

	health, err := st.GetIngestHealth(1)
	if err != nil {
		t.Fatalf("GetIngestHealth: %v", err)
	}
	byEndpoint := map[string]store.IngestHealthSummary{}
	for _, h := range health {
		byEndpoint[h.Endpoint] = h
	}
	if h := byEndpoint["forecast"]; h.SuccessRuns != 1 || h.TotalRecords != 14 {
		t.Errorf("forecast health = %+v, want 1 success with 14 records", h)
	}
	if h := byEndpoint["historical"]; h.FailedRuns != 1 {
		t.Errorf("historical health = %+v, want 1 failure", h)
	}

	failures, err := st.GetRecentIngestErrors(5)
	if err != nil {
		t.Fatalf("GetRecentIngestErrors: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("len(failures) = %d, want 1", len(failures))
	}
	if failures[0].LocationKey.String != "40.44,-79.99" {
		t.Errorf("LocationKey = %q, want 40.44,-79.99", failures[0].LocationKey.String)
	}
	if failures[0].ErrorMessage.String != "historical fetch failed: year 2019: status 500" {
		t.Errorf("ErrorMessage = %q", failures[0].ErrorMessage.String)
	}
}

func TestScheduler_NilStore(t *testing.T) {
	target := &fakeRefresher{}
	NewScheduler(nil, target, 0).RefreshOnce(context.Background())
	if target.calls != 1 {
		t.Errorf("calls = %d, want 1", target.calls)
	}
}

func TestScheduler_RunRefreshesImmediately(t *testing.T) {
	target := &fakeRefresher{}
	s := NewScheduler(nil, target, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&target.calls) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if atomic.LoadInt32(&target.calls) == 0 {
		t.Error("expected an immediate refresh on start")
	}
}

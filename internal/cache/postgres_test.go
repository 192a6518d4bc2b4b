package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("PICNIC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PICNIC_TEST_POSTGRES_DSN not set")
	}

	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	defer db.Exec(`DELETE FROM cache_entries WHERE key = $1`, key)

	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get(empty) ok=%v err=%v", ok, err)
	}
	for _, v := range []string{"one", "two"} {
		if err := s.Set(ctx, key, []byte(v)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok || string(got) != "two" {
		t.Errorf("Get = %q ok=%v err=%v, want upserted value", got, ok, err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DB:                 "data/picnicweather.db",
		CacheBackend:       "sqlite",
		RedisAddr:          "localhost:6379",
		TZ:                 "Local",
		Timeout:            15 * time.Second,
		CacheTTL:           time.Hour,
		DefaultLat:         40.4406,
		DefaultLon:         -79.9959,
		ForecastURL:        "https://api.open-meteo.com/v1/forecast",
		ArchiveURL:         "https://archive-api.open-meteo.com/v1/archive",
		GeocodingURL:       "https://geocoding-api.open-meteo.com/v1/search",
		GeoIPURL:           "http://ip-api.com/json/",
		ArchiveRPS:         5,
		ArchiveConcurrency: 4,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "latitude too large", mutate: func(c *Config) { c.DefaultLat = 91 }, wantErr: "DefaultLat"},
		{name: "longitude too small", mutate: func(c *Config) { c.DefaultLon = -181 }, wantErr: "DefaultLon"},
		{name: "unknown backend", mutate: func(c *Config) { c.CacheBackend = "memcached" }, wantErr: "CacheBackend"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.CacheBackend = "postgres" }, wantErr: "PostgresDSN"},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.CacheBackend = "postgres"
			c.PostgresDSN = "postgres://localhost/picnic"
		}},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: "CacheTTL"},
		{name: "bad url", mutate: func(c *Config) { c.ArchiveURL = "not a url" }, wantErr: "ArchiveURL"},
		{name: "too much concurrency", mutate: func(c *Config) { c.ArchiveConcurrency = 11 }, wantErr: "ArchiveConcurrency"},
		{name: "bad tz", mutate: func(c *Config) { c.TZ = "Mars/Olympus_Mons" }, wantErr: "invalid tz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	c := validConfig()
	loc, err := c.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location(Local) = %v, %v", loc, err)
	}

	c.TZ = "UTC"
	loc, err = c.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Location(UTC) = %v, %v", loc, err)
	}
}

func TestEnvFileFromArgs(t *testing.T) {
	t.Setenv("PICNIC_ENV_FILE", "")

	tests := []struct {
		args []string
		want string
	}{
		{nil, DefaultEnvFile},
		{[]string{"serve", "--env-file", "prod.env"}, "prod.env"},
		{[]string{"--env-file=dev.env", "forecast"}, "dev.env"},
		{[]string{"classify", "--", "--env-file=x"}, DefaultEnvFile},
	}
	for _, tt := range tests {
		if got := EnvFileFromArgs(tt.args); got != tt.want {
			t.Errorf("EnvFileFromArgs(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}

	t.Setenv("PICNIC_ENV_FILE", "from-env.env")
	if got := EnvFileFromArgs(nil); got != "from-env.env" {
		t.Errorf("EnvFileFromArgs with PICNIC_ENV_FILE = %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PICNIC_TEST_LOADENV=from-file\nPICNIC_TEST_PRESET=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PICNIC_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("PICNIC_TEST_LOADENV") })

	LoadEnv([]string{"--env-file", path})

	if got := os.Getenv("PICNIC_TEST_LOADENV"); got != "from-file" {
		t.Errorf("PICNIC_TEST_LOADENV = %q, want from-file", got)
	}
	if got := os.Getenv("PICNIC_TEST_PRESET"); got != "from-env" {
		t.Errorf("PICNIC_TEST_PRESET = %q, want existing value kept", got)
	}

	// missing files are ignored
	LoadEnv([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")})
}

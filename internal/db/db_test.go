package db

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/i474232898/weather-export/internal/config"
)

// captureHandler records log records for assertions.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) sqlLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, r := range h.records {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "sql" {
				out = append(out, a.Value.String())
			}
			return true
		})
	}
	return out
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "weather.db")
	cfg := &config.AppConfig{
		DBDriver:       config.DriverSQLite,
		SQLitePath:     path,
		DBMaxOpenConns: 1,
	}

	database, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(database)

	if err := Migrate(context.Background(), database, cfg.DBDriver); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	var name string
	err = database.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='weather_data'").Scan(&name)
	if err != nil {
		t.Fatalf("weather_data table missing: %v", err)
	}
}

func TestBuildDSN(t *testing.T) {
	cases := []struct {
		cfg  config.AppConfig
		want string
	}{
		{config.AppConfig{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}, ":memory:"},
		{config.AppConfig{DBDriver: config.DriverSQLite, SQLitePath: "weather_data.db"}, "file:weather_data.db?_busy_timeout=5000&_journal_mode=WAL"},
		{config.AppConfig{DBDriver: config.DriverPostgres, DBDSN: "postgres://u@h/db"}, "postgres://u@h/db"},
	}
	for _, tc := range cases {
		got, err := buildDSN(&tc.cfg)
		if err != nil {
			t.Fatalf("buildDSN(%+v): %v", tc.cfg, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}

	if _, err := buildDSN(&config.AppConfig{DBDriver: config.DriverPostgres}); err == nil {
		t.Fatalf("expected error for postgres without DSN")
	}
}

func TestLoggingConnector(t *testing.T) {
	h := &captureHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := &config.AppConfig{
		DBDriver:       config.DriverSQLite,
		SQLitePath:     ":memory:",
		DBMaxOpenConns: 1,
		DBLogSQL:       true,
	}
	database, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(database)

	ctx := context.Background()
	if err := Migrate(ctx, database, cfg.DBDriver); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := database.ExecContext(ctx,
		"INSERT INTO weather_data (timestamp, latitude, longitude) VALUES (?, ?, ?)",
		"2024-06-01T00:00", 1.5, 2.5); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var logged bool
	for _, line := range h.sqlLines() {
		if strings.HasPrefix(line, "INSERT INTO weather_data") {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("insert statement not logged; got %v", h.sqlLines())
	}
}

func TestMigrateUnknownDriver(t *testing.T) {
	if _, err := migrationsDir("mysql"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

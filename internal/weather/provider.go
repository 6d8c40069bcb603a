package weather

import (
	"context"
	"time"
)

// Provider abstracts the upstream weather source (Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location, window DateWindow) (TimeSeries, error)
}

// Store is the contract the SQL store (and the in-memory test store) must satisfy.
type Store interface {
	// ReplaceLocation deletes every row for the exact coordinate pair and
	// inserts one row per reading, atomically. It returns the inserted count.
	ReplaceLocation(ctx context.Context, loc Location, readings []Reading) (int, error)
	// QueryWindow returns all rows with a timestamp at or after since,
	// ascending. Rows whose timestamp cannot be parsed are skipped.
	QueryWindow(ctx context.Context, since time.Time) ([]Observation, error)
	Ping(ctx context.Context) error
}

package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/i474232898/weather-export/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	rows   []weather.Observation
	nextID int64
	now    func() time.Time
	logger *slog.Logger
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		now:    time.Now,
		logger: slog.Default(),
	}
}

// ReplaceLocation drops every row for loc and appends the new readings.
func (s *MemoryStore) ReplaceLocation(ctx context.Context, loc weather.Location, readings []weather.Reading) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.Latitude == loc.Latitude && row.Longitude == loc.Longitude {
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept

	createdAt := s.now().UTC().Truncate(time.Second)
	for _, r := range readings {
		s.rows = append(s.rows, weather.Observation{
			ID:          s.nextID,
			Timestamp:   r.Timestamp,
			Latitude:    loc.Latitude,
			Longitude:   loc.Longitude,
			Temperature: copyFloat(r.Temperature),
			Humidity:    copyFloat(r.Humidity),
			CreatedAt:   createdAt,
		})
		s.nextID++
	}
	return len(readings), nil
}

// QueryWindow returns rows at or after since, ascending.
func (s *MemoryStore) QueryWindow(ctx context.Context, since time.Time) ([]weather.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snapshot := make([]weather.Observation, len(s.rows))
	copy(snapshot, s.rows)
	s.mu.RUnlock()

	return selectWindow(snapshot, since, s.logger), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultExportWindow is how far back exports look.
const DefaultExportWindow = 48 * time.Hour

// Service orchestrates the ingest path (provider -> store) and the data side
// of the export path (store -> observations).
type Service struct {
	store    Store
	provider Provider
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithExportWindow overrides DefaultExportWindow.
func WithExportWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		window:   DefaultExportWindow,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// ExportWindow returns the configured export window.
func (s *Service) ExportWindow() time.Duration {
	return s.window
}

// Ingest fetches the fetch window for loc from the provider and replaces
// the stored rows for that exact coordinate pair. The store is not touched
// when validation or the fetch fails.
func (s *Service) Ingest(ctx context.Context, loc Location) (IngestResult, error) {
	if err := loc.Validate(); err != nil {
		return IngestResult{}, err
	}
	if s.provider == nil {
		return IngestResult{}, Internal("no weather provider configured", nil)
	}

	window := FetchWindow(s.now())
	s.logger.Debug("ingest: fetching",
		"provider", s.provider.Name(),
		"location", loc.Key(),
		"start", window.Start.Format(time.DateOnly),
		"end", window.End.Format(time.DateOnly),
	)

	series, err := s.provider.Fetch(ctx, loc, window)
	if err != nil {
		if KindOf(err) == KindInternal {
			err = UpstreamFetch(MsgUpstreamFetch, err)
		}
		s.logger.Error("ingest: fetch failed", "location", loc.Key(), "error", err)
		return IngestResult{}, err
	}

	n, err := s.store.ReplaceLocation(ctx, loc, series.Readings)
	if err != nil {
		s.logger.Error("ingest: store failed", "location", loc.Key(), "error", err)
		return IngestResult{}, Internal("failed to store weather data", err)
	}

	res := IngestResult{
		Location:   loc,
		DataPoints: len(series.Readings),
	}
	if len(series.Readings) > 0 {
		res.Start = series.Readings[0].Timestamp
		res.End = series.Readings[len(series.Readings)-1].Timestamp
	}

	s.logger.Info("ingest: stored",
		"location", loc.Key(),
		"rows", n,
		"start", res.Start,
		"end", res.End,
	)
	return res, nil
}

// Recent returns the observations of all locations inside the export
// window, ascending. An empty window is a no-data error.
func (s *Service) Recent(ctx context.Context) ([]Observation, error) {
	since := s.now().Add(-s.window)
	obs, err := s.store.QueryWindow(ctx, since)
	if err != nil {
		return nil, Internal("failed to query weather data", err)
	}
	if len(obs) == 0 {
		return nil, NoData(s.noDataMessage())
	}
	return obs, nil
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) noDataMessage() string {
	if s.window%time.Hour == 0 {
		return fmt.Sprintf("No data available for the last %d hours", int(s.window/time.Hour))
	}
	return fmt.Sprintf("No data available for the last %s", s.window)
}

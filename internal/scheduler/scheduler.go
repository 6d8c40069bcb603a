package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-export/internal/weather"
)

const (
	defaultInterval = 60 * time.Minute
	jobTimeout      = 30 * time.Second
)

// Ingester is the part of weather.Service the scheduler drives.
type Ingester interface {
	Ingest(ctx context.Context, loc weather.Location) (weather.IngestResult, error)
}

// Scheduler periodically re-ingests the configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ingester  Ingester
	locations []weather.Location
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, ingester Ingester) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		ingester:  ingester,
		locations: locations,
		interval:  interval,
		logger:    slog.Default().With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.logger.Info("scheduled refresh", "locations", len(s.locations), "interval", s.interval.String())
	s.scheduler.StartAsync()
	return nil
}

// RunOnce ingests every location concurrently and waits for all of them.
// It returns the number of failed locations.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.logger.Info("running weather fetch job")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			res, err := s.ingester.Ingest(ctx, loc)
			if err != nil {
				s.logger.Warn("fetch failed", "location", loc.Key(), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			s.logger.Debug("fetched", "location", loc.Key(), "data_points", res.DataPoints)
		}(loc)
	}
	wg.Wait()

	s.logger.Info("completed weather fetch job", "locations", len(s.locations), "failed", failed)
	return failed
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-export/internal/config"
	"github.com/i474232898/weather-export/internal/weather"
)

// geocode is swapped out in tests.
var geocode = func(addr geocoder.Address) (geocoder.Location, error) {
	return geocoder.Geocoding(addr)
}

var geocoderMu sync.Mutex

// ResolveNamed geocodes named locations into coordinates. Locations that
// fail to resolve are logged and skipped; the error joins every failure.
func ResolveNamed(apiKey string, named []config.NamedLocation) ([]weather.Location, error) {
	if len(named) == 0 {
		return nil, nil
	}
	if apiKey == "" {
		return nil, errors.New("GEOCODER_API_KEY is required for named locations")
	}

	// The geocoder package keeps its key in a package variable.
	geocoderMu.Lock()
	defer geocoderMu.Unlock()
	geocoder.ApiKey = apiKey

	var (
		out  []weather.Location
		errs []error
	)
	for _, n := range named {
		res, err := geocode(geocoder.Address{City: n.City, Country: n.Country})
		if err != nil {
			slog.Warn("geocoding failed", "city", n.City, "country", n.Country, "error", err)
			errs = append(errs, fmt.Errorf("geocode %s, %s: %w", n.City, n.Country, err))
			continue
		}

		loc := weather.Location{Latitude: res.Latitude, Longitude: res.Longitude}
		if err := loc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("geocode %s, %s: %w", n.City, n.Country, err))
			continue
		}
		slog.Info("resolved location", "city", n.City, "country", n.Country, "location", loc.Key())
		out = append(out, loc)
	}
	return out, errors.Join(errs...)
}

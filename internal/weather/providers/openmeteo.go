package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-export/internal/weather"
)

const (
	DefaultOpenMeteoBaseURL = "https://api.open-meteo.com"
	openMeteoForecastPath   = "/v1/forecast"
	openMeteoHourlyFields   = "temperature_2m,relative_humidity_2m"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewOpenMeteoProvider creates a provider for baseURL (scheme and host, no
// path). An empty baseURL means DefaultOpenMeteoBaseURL.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	return NewOpenMeteoProviderWithBreaker(client, baseURL, defaultBreaker)
}

func NewOpenMeteoProviderWithBreaker(client *http.Client, baseURL string, breaker BreakerConfig) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openmeteo", breaker),
		logger:  slog.Default(),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoHourly struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
	Humidity    []*float64 `json:"relative_humidity_2m"`
}

// Fetch requests hourly temperature and humidity for loc over window.
// Failures of any kind come back as weather.ErrUpstreamFetch.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location, window weather.DateWindow) (weather.TimeSeries, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
		values.Set("hourly", openMeteoHourlyFields)
		values.Set("start_date", window.Start.Format(time.DateOnly))
		values.Set("end_date", window.End.Format(time.DateOnly))
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s%s?%s", p.baseURL, openMeteoForecastPath, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.TimeSeries{}, weather.UpstreamFetch(weather.MsgUpstreamFetch, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly openMeteoHourly `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.TimeSeries{}, weather.UpstreamFetch(weather.MsgUpstreamFetch, fmt.Errorf("decode response: %w", err))
	}

	readings := zipHourly(payload.Hourly)
	if len(readings) == 0 {
		return weather.TimeSeries{}, weather.UpstreamFetch(weather.MsgUpstreamFetch, fmt.Errorf("response contains no hourly data"))
	}
	if n := len(readings); len(payload.Hourly.Temperature) < n || len(payload.Hourly.Humidity) < n {
		p.logger.Warn("openmeteo: hourly arrays shorter than time axis; missing values stored as null",
			"location", loc.Key(),
			"time", n,
			"temperature_2m", len(payload.Hourly.Temperature),
			"relative_humidity_2m", len(payload.Hourly.Humidity),
		)
	}

	return weather.TimeSeries{Location: loc, Readings: readings}, nil
}

// zipHourly turns Open-Meteo's parallel arrays into records, one per entry
// of the time axis. Value arrays shorter than the time axis yield nil.
func zipHourly(h openMeteoHourly) []weather.Reading {
	readings := make([]weather.Reading, 0, len(h.Time))
	for i, ts := range h.Time {
		r := weather.Reading{Timestamp: ts}
		if i < len(h.Temperature) {
			r.Temperature = h.Temperature[i]
		}
		if i < len(h.Humidity) {
			r.Humidity = h.Humidity[i]
		}
		readings = append(readings, r)
	}
	return readings
}

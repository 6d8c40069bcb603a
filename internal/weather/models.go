package weather

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Location is a geographic point observations are fetched and stored for.
// Stored rows are keyed by the exact pair, so no rounding is applied.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Key returns a canonical string key for indexing this location.
func (l Location) Key() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + ":" + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// Validate reports a validation error when either coordinate is out of range
// or not a number.
func (l Location) Validate() error {
	if err := validate.Struct(l); err != nil {
		return Validation(MsgInvalidCoordinates)
	}
	return nil
}

// DateWindow is a closed range of calendar days requested from the source.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// FetchWindow returns the ingest window: two days before today through today.
func FetchWindow(now time.Time) DateWindow {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateWindow{
		Start: today.AddDate(0, 0, -2),
		End:   today,
	}
}

// Reading is one hourly record as delivered by the source. Nil values mean
// the source had no value for that hour.
type Reading struct {
	Timestamp   string   `json:"timestamp"`
	Temperature *float64 `json:"temperature_2m"`
	Humidity    *float64 `json:"relative_humidity_2m"`
}

// TimeSeries is the ordered result of a single fetch.
type TimeSeries struct {
	Location Location
	Readings []Reading
}

// Observation is a stored row of the weather_data table.
type Observation struct {
	ID          int64     `json:"id"`
	Timestamp   string    `json:"timestamp"`
	Time        time.Time `json:"-"` // parsed Timestamp, set by the store on read
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Temperature *float64  `json:"temperature_2m"`
	Humidity    *float64  `json:"relative_humidity_2m"`
	CreatedAt   time.Time `json:"created_at"`
}

// Location returns the coordinate pair the observation belongs to.
func (o Observation) Location() Location {
	return Location{Latitude: o.Latitude, Longitude: o.Longitude}
}

// IngestResult summarizes a completed ingest.
type IngestResult struct {
	Location   Location
	DataPoints int
	Start      string
	End        string
}

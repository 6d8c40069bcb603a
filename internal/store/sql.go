package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-export/internal/weather"
)

//go:embed sql/delete-location.sql
var deleteLocationSQL string

//go:embed sql/insert-observation.sql
var insertObservationSQL string

//go:embed sql/select-observations.sql
var selectObservationsSQL string

//go:embed sql/ping.sql
var pingSQL string

// SQLStore persists observations in the weather_data table through
// database/sql. Queries use ? placeholders and are rebound for postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// NewSQLStore wraps an open database handle. The schema must already exist
// (see db.Migrate).
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, logger: slog.Default()}
}

// ReplaceLocation deletes all rows for loc and inserts readings in one
// transaction, so readers never observe the empty intermediate state.
func (s *SQLStore) ReplaceLocation(ctx context.Context, loc weather.Location, readings []weather.Reading) (n int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback replace location", "location", loc.Key(), "error", rbErr)
		}
	}()

	res, err := tx.ExecContext(ctx, s.rebind(deleteLocationSQL), loc.Latitude, loc.Longitude)
	if err != nil {
		return 0, fmt.Errorf("delete location: %w", err)
	}
	if deleted, raErr := res.RowsAffected(); raErr == nil {
		s.logger.Debug("deleted previous observations", "location", loc.Key(), "rows", deleted)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertObservationSQL))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			s.logger.Error("close insert statement", "error", closeErr)
		}
	}()

	for _, r := range readings {
		_, err = stmt.ExecContext(ctx,
			r.Timestamp,
			loc.Latitude,
			loc.Longitude,
			nullFloat(r.Temperature),
			nullFloat(r.Humidity),
		)
		if err != nil {
			return 0, fmt.Errorf("insert observation %q: %w", r.Timestamp, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(readings), nil
}

// QueryWindow reads every row and keeps those at or after since. Filtering
// happens after parsing so malformed timestamps can be skipped instead of
// failing the query.
func (s *SQLStore) QueryWindow(ctx context.Context, since time.Time) ([]weather.Observation, error) {
	rows, err := s.db.QueryContext(ctx, selectObservationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("close observation rows", "error", err)
		}
	}()

	var all []weather.Observation
	for rows.Next() {
		var (
			o         weather.Observation
			temp, hum sql.NullFloat64
			createdAt sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.Timestamp, &o.Latitude, &o.Longitude, &temp, &hum, &createdAt); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Temperature = floatPtr(temp)
		o.Humidity = floatPtr(hum)
		o.CreatedAt = createdAt.Time
		all = append(all, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return selectWindow(all, since, s.logger), nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	var ok int
	if err := s.db.QueryRowContext(ctx, pingSQL).Scan(&ok); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $1..$n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

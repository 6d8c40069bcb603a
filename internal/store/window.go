package store

import (
	"log/slog"
	"sort"
	"time"

	"github.com/i474232898/weather-export/internal/weather"
)

// selectWindow parses each row's timestamp, drops rows before since and
// returns the rest in chronological order. Rows with an unparseable
// timestamp are logged and excluded.
func selectWindow(rows []weather.Observation, since time.Time, logger *slog.Logger) []weather.Observation {
	out := make([]weather.Observation, 0, len(rows))
	for _, row := range rows {
		t, err := weather.ParseTimestamp(row.Timestamp, since.Location())
		if err != nil {
			logger.Warn("skipping row with malformed timestamp",
				"id", row.ID,
				"timestamp", row.Timestamp,
				"error", err,
			)
			continue
		}
		if t.Before(since) {
			continue
		}
		row.Time = t
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time.Equal(out[j].Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

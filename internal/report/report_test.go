package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"

	"github.com/i474232898/weather-export/internal/weather"
)

func ptr(v float64) *float64 { return &v }

func observations(temps []*float64, hums []*float64) []weather.Observation {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]weather.Observation, len(temps))
	for i := range temps {
		t := start.Add(time.Duration(i) * time.Hour)
		obs[i] = weather.Observation{
			ID:          int64(i + 1),
			Timestamp:   t.Format("2006-01-02T15:04"),
			Time:        t,
			Latitude:    52.52,
			Longitude:   13.41,
			Temperature: temps[i],
			Humidity:    hums[i],
		}
	}
	return obs
}

func TestStatsRows(t *testing.T) {
	obs := observations(
		[]*float64{ptr(10), ptr(12.5), ptr(20)},
		[]*float64{ptr(40), ptr(60), ptr(80)},
	)
	rows := statsRows(weather.Summarize(obs))

	want := [][]string{
		{"Average", "14.2", "60.0"},
		{"Maximum", "20.0", "80.0"},
		{"Minimum", "10.0", "40.0"},
		{"Range", "10.0", "40.0"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Fatalf("row %d: expected %v, got %v", i, want[i], rows[i])
		}
	}
}

func TestStatsRowsAllNull(t *testing.T) {
	obs := observations(
		[]*float64{nil, nil},
		[]*float64{ptr(55), nil},
	)
	rows := statsRows(weather.Summarize(obs))

	for _, row := range rows {
		if row[1] != statPlaceholder {
			t.Fatalf("%s: expected temperature placeholder, got %q", row[0], row[1])
		}
	}
	if rows[0][2] != "55.0" || rows[3][2] != "0.0" {
		t.Fatalf("unexpected humidity column %v", rows)
	}
}

func TestMetadataLines(t *testing.T) {
	obs := observations(
		[]*float64{ptr(1), ptr(2), ptr(3)},
		[]*float64{ptr(1), ptr(2), ptr(3)},
	)
	generated := time.Date(2024, 6, 3, 9, 30, 15, 0, time.UTC)
	lines := metadataLines(weather.Summarize(obs), generated)

	want := []string{
		"Location: Lat 52.52°, Lon 13.41°",
		"Date Range: 2024-06-01 00:00 to 2024-06-01 02:00",
		"Data Points: 3 hourly measurements",
		"Generated: 2024-06-03 09:30:15",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestHourTicks(t *testing.T) {
	day := func(d, h, m int) time.Time { return time.Date(2024, 6, d, h, m, 0, 0, time.UTC) }
	cases := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"day span", day(1, 1, 30), day(2, 1, 0), "06-01 00:00,06-01 06:00,06-01 12:00,06-01 18:00,06-02 00:00,06-02 06:00"},
		{"single point on boundary", day(1, 12, 0), day(1, 12, 0), "06-01 12:00,06-01 18:00"},
		{"single point between boundaries", day(1, 13, 0), day(1, 13, 0), "06-01 12:00,06-01 18:00"},
		{"hour apart across boundary", day(1, 5, 0), day(1, 6, 0), "06-01 00:00,06-01 06:00"},
		{"end just past boundary", day(1, 23, 0), day(2, 0, 30), "06-01 18:00,06-02 00:00,06-02 06:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticks := hourTicks(tc.start, tc.end, 6*time.Hour)
			labels := make([]string, len(ticks))
			for i, tk := range ticks {
				labels[i] = tk.Label
			}
			if got := strings.Join(labels, ","); got != tc.want {
				t.Fatalf("expected ticks %s, got %s", tc.want, got)
			}
			if len(ticks) < 2 {
				t.Fatalf("expected at least two ticks, got %d", len(ticks))
			}
			if ticks[0].Value > chart.TimeToFloat64(tc.start) || ticks[len(ticks)-1].Value < chart.TimeToFloat64(tc.end) {
				t.Fatalf("ticks %s do not bracket %v..%v", labels, tc.start, tc.end)
			}
		})
	}
}

func TestWindowLabel(t *testing.T) {
	if got := windowLabel(48 * time.Hour); got != "48 Hours" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := windowLabel(90 * time.Minute); got != "1h30m0s" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	obs := observations(
		[]*float64{ptr(10.5), nil},
		[]*float64{ptr(70), ptr(71)},
	)

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, obs); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if got := strings.Join(rows[1], ","); got != "2024-06-01T00:00,10.5,70,52.52,13.41" {
		t.Fatalf("unexpected first data row %q", got)
	}
	if rows[2][1] != "" {
		t.Fatalf("expected empty cell for missing temperature, got %q", rows[2][1])
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, nil); !errors.Is(err, weather.ErrNoData) {
		t.Fatalf("expected no-data error, got %v", err)
	}
	if err := WritePDF(&buf, nil, PDFOptions{}); !errors.Is(err, weather.ErrNoData) {
		t.Fatalf("expected no-data error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %d bytes", buf.Len())
	}
}

// shiftObservations moves every observation by d.
func shiftObservations(obs []weather.Observation, d time.Duration) []weather.Observation {
	for i := range obs {
		obs[i].Time = obs[i].Time.Add(d)
		obs[i].Timestamp = obs[i].Time.Format("2006-01-02T15:04")
	}
	return obs
}

func TestWritePDF(t *testing.T) {
	fullDay := func() []weather.Observation {
		temps := make([]*float64, 48)
		hums := make([]*float64, 48)
		for i := range temps {
			temps[i] = ptr(15 + float64(i%12))
			hums[i] = ptr(60 + float64(i%5))
		}
		return observations(temps, hums)
	}

	cases := []struct {
		name string
		obs  []weather.Observation
	}{
		{"full window", fullDay()},
		{"off boundary start", shiftObservations(fullDay(), 3*time.Hour+30*time.Minute)},
		{"humidity missing", observations([]*float64{ptr(10), ptr(11), ptr(12)}, []*float64{nil, nil, nil})},
		{"single row at 11:00", shiftObservations(observations([]*float64{ptr(20)}, []*float64{ptr(55)}), 11*time.Hour)},
		{"single row at 12:00", shiftObservations(observations([]*float64{ptr(20)}, []*float64{ptr(55)}), 12*time.Hour)},
		{"single row at 13:00", shiftObservations(observations([]*float64{ptr(20)}, []*float64{ptr(55)}), 13*time.Hour)},
		{"one non-null temperature", observations([]*float64{nil, nil, ptr(18), nil}, []*float64{ptr(50), ptr(51), ptr(52), ptr(53)})},
		{"hour apart across boundary", shiftObservations(observations([]*float64{ptr(1), ptr(2)}, []*float64{ptr(3), ptr(4)}), 5*time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WritePDF(&buf, tc.obs, PDFOptions{
				GeneratedAt: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
				Window:      48 * time.Hour,
			})
			if err != nil {
				t.Fatalf("WritePDF: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
				t.Fatalf("output is not a PDF document")
			}
		})
	}
}

func TestRenderChartSinglePoint(t *testing.T) {
	for _, hour := range []int{11, 12, 13, 15} {
		at := time.Date(2024, 6, 1, hour, 0, 0, 0, time.UTC)
		png, err := renderChart(temperatureChart, []time.Time{at}, []float64{21})
		if err != nil {
			t.Fatalf("%02d:00: renderChart: %v", hour, err)
		}
		if !bytes.HasPrefix(png, []byte("\x89PNG")) {
			t.Fatalf("%02d:00: output is not a PNG image", hour)
		}
	}
}

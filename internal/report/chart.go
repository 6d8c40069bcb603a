package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/weather-export/internal/weather"
)

const (
	chartWidth    = 1200
	chartHeight   = 420
	tickInterval  = 6 * time.Hour
	tickLabelTime = "01-02 15:04"
)

type chartSpec struct {
	Title  string
	YLabel string
	XLabel string
	Color  drawing.Color
}

var (
	temperatureChart = chartSpec{
		Title:  "Temperature Trend - Last 48 Hours",
		YLabel: "Temperature (°C)",
		Color:  drawing.ColorRed,
	}
	humidityChart = chartSpec{
		Title:  "Humidity Trend - Last 48 Hours",
		YLabel: "Relative Humidity (%)",
		XLabel: "Time",
		Color:  drawing.ColorBlue,
	}
)

// series extracts the non-nil values of one column.
func series(obs []weather.Observation, value func(weather.Observation) *float64) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(obs))
	ys := make([]float64, 0, len(obs))
	for _, o := range obs {
		v := value(o)
		if v == nil {
			continue
		}
		xs = append(xs, o.Time)
		ys = append(ys, *v)
	}
	return xs, ys
}

// hourTicks returns ticks every interval, labelled MM-DD HH:MM, that bracket
// [start, end]: the first is start floored to a multiple of interval past
// midnight, the last is the first boundary at or after end. There are always
// at least two ticks, so the axis range derived from them is never empty.
func hourTicks(start, end time.Time, interval time.Duration) []chart.Tick {
	step := int(interval / time.Hour)
	if step <= 0 {
		step = 1
		interval = time.Hour
	}
	hour := start.Hour() - start.Hour()%step
	t := time.Date(start.Year(), start.Month(), start.Day(), hour, 0, 0, 0, start.Location())

	var ticks []chart.Tick
	for {
		ticks = append(ticks, chart.Tick{
			Value: chart.TimeToFloat64(t),
			Label: t.Format(tickLabelTime),
		})
		if !t.Before(end) && len(ticks) >= 2 {
			return ticks
		}
		t = t.Add(interval)
	}
}

// paddedRange returns a y range around the values; a flat series gets a
// unit band so the range is never empty.
func paddedRange(ys []float64) *chart.ContinuousRange {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// renderChart draws one line chart as PNG. xs must not be empty.
func renderChart(spec chartSpec, xs []time.Time, ys []float64) ([]byte, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("chart %q: no values", spec.Title)
	}

	start, end := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x.Before(start) {
			start = x
		}
		if x.After(end) {
			end = x
		}
	}
	// go-chart takes the x range from the ticks when they are set.
	ticks := hourTicks(start, end, tickInterval)

	grid := chart.Style{
		StrokeColor: drawing.ColorFromHex("d9d9d9"),
		StrokeWidth: 1,
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 30, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           spec.XLabel,
			Range:          &chart.ContinuousRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value},
			Ticks:          ticks,
			TickStyle:      chart.Style{TextRotationDegrees: 45.0},
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:      spec.YLabel,
			NameStyle: chart.Style{FontColor: spec.Color},
			Style:     chart.Style{FontColor: spec.Color},
			Range:     paddedRange(ys),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", f)
				}
				return ""
			},
			GridMajorStyle: grid,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    spec.YLabel,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: spec.Color,
					StrokeWidth: 2,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart %q: %w", spec.Title, err)
	}
	return buf.Bytes(), nil
}

package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/i474232898/weather-export/internal/weather"
)

const (
	PDFContentType = "application/pdf"
	PDFFilename    = "weather_report.pdf"

	reportTitle       = "Weather Data Report"
	rangeTimeLayout   = "2006-01-02 15:04"
	generatedLayout   = "2006-01-02 15:04:05"
	statPlaceholder   = "N/A"
	noSeriesDataLabel = "No data"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageMargin   = 15.0
	contentWidth = 210.0 - 2*pageMargin
	chartBoxH    = contentWidth * chartHeight / chartWidth
)

// PDFOptions carries the values a report depends on besides the data.
type PDFOptions struct {
	GeneratedAt time.Time
	Window      time.Duration
}

// WritePDF renders obs as a single-page report: metadata, temperature chart,
// humidity chart and summary statistics. Nothing is written to w unless the
// whole document renders.
func WritePDF(w io.Writer, obs []weather.Observation, opts PDFOptions) error {
	if len(obs) == 0 {
		return weather.NoData("No data available for the report")
	}
	if opts.Window <= 0 {
		opts.Window = weather.DefaultExportWindow
	}

	summary := weather.Summarize(obs)
	label := windowLabel(opts.Window)

	tempSpec := temperatureChart
	tempSpec.Title = "Temperature Trend - Last " + label
	humSpec := humidityChart
	humSpec.Title = "Humidity Trend - Last " + label

	tempPNG, err := chartOrNil(tempSpec, obs, func(o weather.Observation) *float64 { return o.Temperature })
	if err != nil {
		return err
	}
	humPNG, err := chartOrNil(humSpec, obs, func(o weather.Observation) *float64 { return o.Humidity })
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(reportTitle, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentWidth, 12, reportTitle, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	writeMetadata(pdf, tr, summary, opts.GeneratedAt)
	pdf.Ln(4)

	placeChart(pdf, tr, "temperature", tempSpec, tempPNG)
	pdf.Ln(2)
	placeChart(pdf, tr, "humidity", humSpec, humPNG)
	pdf.Ln(4)

	writeStatsTable(pdf, tr, summary)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func chartOrNil(spec chartSpec, obs []weather.Observation, value func(weather.Observation) *float64) ([]byte, error) {
	xs, ys := series(obs, value)
	if len(xs) == 0 {
		return nil, nil
	}
	return renderChart(spec, xs, ys)
}

// metadataLines returns the text of the metadata block.
func metadataLines(s weather.Summary, generatedAt time.Time) []string {
	return []string{
		fmt.Sprintf("Location: Lat %.2f°, Lon %.2f°", s.Location.Latitude, s.Location.Longitude),
		fmt.Sprintf("Date Range: %s to %s", s.Start.Format(rangeTimeLayout), s.End.Format(rangeTimeLayout)),
		fmt.Sprintf("Data Points: %d hourly measurements", s.Count),
		fmt.Sprintf("Generated: %s", generatedAt.Format(generatedLayout)),
	}
}

func writeMetadata(pdf *fpdf.Fpdf, tr func(string) string, s weather.Summary, generatedAt time.Time) {
	lines := metadataLines(s, generatedAt)
	const lineH = 6.5

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetFillColor(211, 211, 211)
	pdf.SetDrawColor(160, 160, 160)
	x, y := pdf.GetXY()
	pdf.RoundedRect(x, y, contentWidth, float64(len(lines))*lineH+6, 3, "1234", "FD")
	pdf.SetXY(x+6, y+3)
	for _, line := range lines {
		pdf.CellFormat(contentWidth-12, lineH, tr(line), "", 2, "L", false, 0, "")
	}
	pdf.SetXY(x, y+float64(len(lines))*lineH+6)
}

func placeChart(pdf *fpdf.Fpdf, tr func(string) string, name string, spec chartSpec, png []byte) {
	x, y := pdf.GetXY()
	if png == nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentWidth, 8, tr(spec.Title), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "I", 11)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(contentWidth, chartBoxH-8, noSeriesDataLabel, "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		return
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, contentWidth, chartBoxH, false, opts, 0, "")
	pdf.SetXY(x, y+chartBoxH)
}

// statsRows returns the summary table body: Average, Maximum, Minimum and
// Range for temperature and humidity, one decimal each.
func statsRows(s weather.Summary) [][]string {
	format := func(st weather.Stat, v float64) string {
		if !st.OK() {
			return statPlaceholder
		}
		return fmt.Sprintf("%.1f", v)
	}
	t, h := s.Temperature, s.Humidity
	return [][]string{
		{"Average", format(t, t.Mean), format(h, h.Mean)},
		{"Maximum", format(t, t.Max), format(h, h.Max)},
		{"Minimum", format(t, t.Min), format(h, h.Min)},
		{"Range", format(t, t.Range), format(h, h.Range)},
	}
}

var statsHeader = []string{"Metric", "Temperature (°C)", "Humidity (%)"}

func writeStatsTable(pdf *fpdf.Fpdf, tr func(string) string, s weather.Summary) {
	const (
		rowH   = 8.0
		tableW = contentWidth * 0.8
	)
	colW := tableW / float64(len(statsHeader))
	left := pageMargin + (contentWidth-tableW)/2

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentWidth, 9, "Summary Statistics", "", 1, "C", false, 0, "")
	pdf.Ln(1)

	pdf.SetX(left)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(76, 175, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(0, 0, 0)
	for _, h := range statsHeader {
		pdf.CellFormat(colW, rowH, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range statsRows(s) {
		pdf.SetX(left)
		for _, cell := range row {
			pdf.CellFormat(colW, rowH, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// windowLabel renders a window as "48 Hours" (or the duration when it is not
// a whole number of hours).
func windowLabel(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d Hours", int(d/time.Hour))
	}
	return d.String()
}

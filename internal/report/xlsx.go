package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/weather-export/internal/weather"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	XLSXFilename    = "weather_data.xlsx"
	SheetName       = "Weather Data"
)

// Columns is the spreadsheet header, in column order.
var Columns = []string{"timestamp", "temperature_2m", "relative_humidity_2m", "latitude", "longitude"}

// WriteXLSX writes obs as a single-sheet workbook, one row per observation in
// the given order. Nil values are left as empty cells.
func WriteXLSX(w io.Writer, obs []weather.Observation) error {
	if len(obs) == 0 {
		return weather.NoData("No data available for the spreadsheet")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, o := range obs {
		row := i + 2
		values := []interface{}{o.Timestamp, optional(o.Temperature), optional(o.Humidity), o.Latitude, o.Longitude}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 20); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "C", 22); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// optional returns the value or an untyped nil so the cell is skipped.
func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

package httpapi

import (
	"bytes"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-export/internal/common"
	"github.com/i474232898/weather-export/internal/report"
	"github.com/i474232898/weather-export/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := service.Ping(c.UserContext()); err != nil {
			return weather.Internal("failed to check database connectivity", err)
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": AppName,
		})
	})

	app.Get("/weather-report", func(c *fiber.Ctx) error {
		q, err := parseCoordinateQuery(c)
		if err != nil {
			return err
		}

		res, err := service.Ingest(c.UserContext(), q.toLocation())
		if err != nil {
			return err
		}

		return c.JSON(ingestResponse{
			Message:    "Weather data fetched and stored successfully",
			Location:   res.Location,
			DataPoints: res.DataPoints,
			DateRange:  dateRange{Start: res.Start, End: res.End},
		})
	})

	export := app.Group("/export")

	export.Get("/excel", func(c *fiber.Ctx) error {
		obs, err := service.Recent(c.UserContext())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.WriteXLSX(&buf, obs); err != nil {
			return weather.Internal("failed to build spreadsheet", err)
		}
		return sendAttachment(c, report.XLSXFilename, report.XLSXContentType, buf.Bytes())
	})

	export.Get("/pdf", func(c *fiber.Ctx) error {
		obs, err := service.Recent(c.UserContext())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		opts := report.PDFOptions{GeneratedAt: service.Now(), Window: service.ExportWindow()}
		if err := report.WritePDF(&buf, obs, opts); err != nil {
			return weather.Internal("failed to build report", err)
		}
		return sendAttachment(c, report.PDFFilename, report.PDFContentType, buf.Bytes())
	})
}

func sendAttachment(c *fiber.Ctx, filename, contentType string, body []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ingestResponse struct {
	Message    string           `json:"message"`
	Location   weather.Location `json:"location"`
	DataPoints int              `json:"data_points"`
	DateRange  dateRange        `json:"date_range"`
}

// coordinateQuery holds the ingest query parameters. lat/lon are the
// primary names; latitude/longitude are accepted as aliases.
type coordinateQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (q coordinateQuery) toLocation() weather.Location {
	return weather.Location{
		Latitude:  q.Lat,
		Longitude: q.Lon,
	}
}

func parseCoordinateQuery(c *fiber.Ctx) (coordinateQuery, error) {
	latStr := common.FirstNonEmpty(c.Query("lat"), c.Query("latitude"))
	lonStr := common.FirstNonEmpty(c.Query("lon"), c.Query("longitude"))
	if latStr == "" || lonStr == "" {
		return coordinateQuery{}, weather.Validation(weather.MsgMissingCoordinates)
	}

	var q coordinateQuery
	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return coordinateQuery{}, weather.Validation(weather.MsgInvalidCoordinates)
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return coordinateQuery{}, weather.Validation(weather.MsgInvalidCoordinates)
	}

	if err := validate.Struct(q); err != nil {
		return coordinateQuery{}, weather.Validation(weather.MsgInvalidCoordinates)
	}
	return q, nil
}

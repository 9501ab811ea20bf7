package httpapi

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/views"
)

var validate = validator.New()

// Defaults pre-fill the dashboard controls.
type Defaults struct {
	Name string
	Lat  float64
	Lon  float64
	Date time.Time
	AOD  float64
}

// DefaultControls returns the stock control values for the given default date.
func DefaultControls(date time.Time) Defaults {
	return Defaults{
		Name: "Delhi",
		Lat:  28.61,
		Lon:  77.21,
		Date: date,
		AOD:  1.0,
	}
}

// RegisterRoutes wires the dashboard and JSON handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service, renderer *views.Renderer, defaults Defaults) {
	app.Get("/", func(c *fiber.Ctx) error {
		var q dashboardQuery
		q.bind(c, defaults)

		status := fiber.StatusOK
		var (
			out     airquality.Outcome
			invalid error
		)
		if err := validate.Struct(q); err != nil {
			invalid = err
		} else if err := q.parseDate(); err != nil {
			invalid = err
		} else if err := q.checkAOD(); err != nil {
			invalid = err
		}

		if invalid != nil {
			status = fiber.StatusBadRequest
			out = airquality.Outcome{Stage: airquality.StageAwaitingInput}
		} else {
			var err error
			out, err = service.Evaluate(c.UserContext(), q.toQuery())
			if err != nil {
				slog.Error("dashboard evaluation failed", "err", err)
				return fiber.NewError(fiber.StatusInternalServerError, "failed to evaluate dashboard")
			}
		}

		data, err := views.NewDashboardData(q.form(), out)
		if err != nil {
			slog.Error("dashboard view model failed", "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
		}
		if invalid != nil {
			data.Notices = append([]views.Notice{{Level: views.LevelError, Text: "Invalid input: " + invalid.Error()}}, data.Notices...)
		}

		var buf bytes.Buffer
		if err := renderer.RenderDashboard(&buf, data); err != nil {
			slog.Error("dashboard template render failed", "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(status).Send(buf.Bytes())
	})

	v1 := app.Group("/api/v1")

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		loc, err := service.Geocode(c.UserContext(), q)
		if err != nil {
			if errors.Is(err, airquality.ErrLocationNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "location not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to resolve location")
		}
		return c.JSON(loc)
	})

	v1.Get("/readings", func(c *fiber.Ctx) error {
		loc, day, err := resolveHistoryQuery(c, service, defaults)
		if err != nil {
			return err
		}

		readings := service.History(day, loc)
		resp := fiber.Map{
			"location": loc,
			"date":     day.Format(airquality.DateLayout),
			"radius":   service.Radius(),
			"readings": readings,
		}
		if len(readings) == 0 {
			resp["warning"] = views.MsgNoData
		}
		return c.JSON(resp)
	})

	v1.Get("/readings.geojson", func(c *fiber.Ctx) error {
		loc, day, err := resolveHistoryQuery(c, service, defaults)
		if err != nil {
			return err
		}

		b, err := views.ReadingsFeatureCollection(service.History(day, loc)).MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode geojson")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(b)
	})

	predict := func(c *fiber.Ctx) error {
		var req airquality.PredictionRequest
		if err := bindPrediction(c, &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "aod must be between 0 and 5")
		}

		res, err := service.Predict(req)
		if err != nil {
			slog.Error("prediction failed", "aod", req.AOD, "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to predict PM2.5")
		}
		return c.JSON(fiber.Map{
			"aod":       res.AOD,
			"pm25":      res.PM25,
			"formatted": airquality.FormatPM25(res.PM25),
		})
	}
	v1.Get("/predict", predict)
	v1.Post("/predict", predict)

	v1.Get("/aod/current", func(c *fiber.Ctx) error {
		loc, _, err := resolveHistoryQuery(c, service, defaults)
		if err != nil {
			return err
		}

		est, err := service.LiveEstimate(c.UserContext(), loc)
		if err != nil {
			if errors.Is(err, airquality.ErrNoAODProvider) {
				return fiber.NewError(fiber.StatusServiceUnavailable, "live AOD is not configured")
			}
			if errors.Is(err, airquality.ErrAODOutOfRange) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			slog.Warn("live AOD lookup failed", "lat", loc.Latitude, "lon", loc.Longitude, "err", err)
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch live AOD")
		}
		return c.JSON(fiber.Map{
			"location":  est.Location,
			"sample":    est.Sample,
			"aod":       est.Prediction.AOD,
			"pm25":      est.Prediction.PM25,
			"formatted": airquality.FormatPM25(est.Prediction.PM25),
		})
	})
}

// dashboardQuery holds the raw dashboard controls.
type dashboardQuery struct {
	Mode    string `validate:"oneof=name coords"`
	Name    string
	LatStr  string
	LonStr  string
	DateStr string `validate:"required"`
	View    string `validate:"oneof=historical predict"`
	AOD     float64

	aodStr string
	date   time.Time
}

func (q *dashboardQuery) bind(c *fiber.Ctx, d Defaults) {
	q.Mode = c.Query("location_mode", string(airquality.LocationByName))
	q.Name = queryOr(c, "location", d.Name)
	q.LatStr = queryOr(c, "lat", formatCoord(d.Lat))
	q.LonStr = queryOr(c, "lon", formatCoord(d.Lon))
	q.DateStr = c.Query("date", d.Date.Format(airquality.DateLayout))
	q.View = c.Query("view", string(airquality.ViewHistorical))
	q.aodStr = c.Query("aod", strconv.FormatFloat(d.AOD, 'f', 2, 64))

	// An unparseable AOD is reported by the range check.
	aod, err := strconv.ParseFloat(q.aodStr, 64)
	if err != nil {
		aod = -1
	}
	q.AOD = aod
}

func (q *dashboardQuery) parseDate() error {
	d, err := time.Parse(airquality.DateLayout, q.DateStr)
	if err != nil {
		return errors.New("date must be formatted as YYYY-MM-DD")
	}
	q.date = d
	return nil
}

// checkAOD range-checks the AOD control, which only the prediction view reads.
func (q dashboardQuery) checkAOD() error {
	if airquality.ViewMode(q.View) != airquality.ViewPredict {
		return nil
	}
	if err := validate.Var(q.AOD, "gte=0,lte=5"); err != nil {
		return errors.New("aod must be between 0 and 5")
	}
	return nil
}

func (q dashboardQuery) toQuery() airquality.Query {
	return airquality.Query{
		Mode: airquality.LocationMode(q.Mode),
		Name: q.Name,
		Lat:  parseCoord(q.LatStr),
		Lon:  parseCoord(q.LonStr),
		Date: q.date,
		View: airquality.ViewMode(q.View),
		AOD:  q.AOD,
	}
}

func (q dashboardQuery) form() views.FormState {
	return views.FormState{
		Mode: q.Mode,
		Name: q.Name,
		Lat:  q.LatStr,
		Lon:  q.LonStr,
		Date: q.DateStr,
		View: q.View,
		AOD:  q.aodStr,
	}
}

// historyQuery holds query parameters for the readings endpoints.
// Either Location or both Lat and Lon must be present.
type historyQuery struct {
	Location string
	Lat      *float64 `validate:"required_without=Location"`
	Lon      *float64 `validate:"required_without=Location"`
	Date     time.Time
}

func (h *historyQuery) bind(c *fiber.Ctx, d Defaults) error {
	h.Location = strings.TrimSpace(c.Query("location"))
	h.Lat = parseCoord(c.Query("lat"))
	h.Lon = parseCoord(c.Query("lon"))

	if err := validate.Struct(h); err != nil {
		return errors.New("location or numeric lat and lon query parameters are required")
	}

	dateStr := c.Query("date", d.Date.Format(airquality.DateLayout))
	day, err := time.Parse(airquality.DateLayout, dateStr)
	if err != nil {
		return errors.New("date must be formatted as YYYY-MM-DD")
	}
	h.Date = day
	return nil
}

func resolveHistoryQuery(c *fiber.Ctx, service *airquality.Service, d Defaults) (airquality.Location, time.Time, error) {
	var req historyQuery
	if err := req.bind(c, d); err != nil {
		return airquality.Location{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if req.Lat != nil && req.Lon != nil {
		return airquality.Location{Latitude: *req.Lat, Longitude: *req.Lon}, req.Date, nil
	}

	loc, err := service.Geocode(c.UserContext(), req.Location)
	if err != nil {
		return airquality.Location{}, time.Time{}, fiber.NewError(fiber.StatusNotFound, "location not found")
	}
	return loc, req.Date, nil
}

func bindPrediction(c *fiber.Ctx, req *airquality.PredictionRequest) error {
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return errors.New("invalid prediction body")
		}
		return nil
	}

	s := c.Query("aod")
	if s == "" {
		return errors.New("aod query parameter is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("aod must be a number")
	}
	req.AOD = v
	return nil
}

// queryOr returns the raw parameter when present, even if blank, and def otherwise.
func queryOr(c *fiber.Ctx, key, def string) string {
	if !c.Context().QueryArgs().Has(key) {
		return def
	}
	return c.Query(key)
}

// parseCoord returns nil for empty, non-numeric or non-finite input; range is not checked.
func parseCoord(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

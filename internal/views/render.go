package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/i474232898/airsense/internal/airquality"
)

//go:embed templates/*.html
var templatesFS embed.FS

// User-facing notice texts.
const (
	MsgEnterLocation = "Enter a valid city or coordinates to continue."
	MsgNotFound      = "Location not found. Please enter a valid city."
	MsgNoData        = "No historical data found for that location and date."
)

// Notice levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is a banner shown above the main panel.
type Notice struct {
	Level string
	Text  string
}

// FormState echoes the submitted controls back into the sidebar.
type FormState struct {
	Mode string
	Name string
	Lat  string
	Lon  string
	Date string
	View string
	AOD  string
}

// HistoricalPanel is the chart and map for the historical view.
// Chart and Map are nil when nothing matched.
type HistoricalPanel struct {
	Heading string
	Chart   *LineChart
	Map     *MapPanel
}

// PredictionPanel is the metric readout and location map for the predict view.
type PredictionPanel struct {
	Heading string
	Label   string
	Value   string
	Help    string
	Map     *MapPanel
}

// DashboardData is the view model for dashboard.html.
type DashboardData struct {
	Title      string
	Form       FormState
	Notices    []Notice
	Historical *HistoricalPanel
	Prediction *PredictionPanel
}

// NewDashboardData maps an evaluation outcome onto the page.
func NewDashboardData(form FormState, out airquality.Outcome) (*DashboardData, error) {
	d := &DashboardData{
		Title: "AirSense: Satellite-Based PM2.5 Monitoring",
		Form:  form,
	}

	switch out.Stage {
	case airquality.StageLocationFailed:
		d.Notices = append(d.Notices,
			Notice{Level: LevelError, Text: MsgNotFound},
			Notice{Level: LevelInfo, Text: MsgEnterLocation},
		)

	case airquality.StageHistorical:
		date := out.Date.Format(airquality.DateLayout)
		p := &HistoricalPanel{
			Heading: fmt.Sprintf("PM2.5 near selected location on %s", date),
		}
		if out.Empty() {
			d.Notices = append(d.Notices, Notice{Level: LevelWarning, Text: MsgNoData})
		} else {
			p.Chart = NewLineChart("PM2.5 Trend", out.Readings)
			m, err := newMapPanel("map-historical", out.Location, HistoricalZoom, ReadingsFeatureCollection(out.Readings))
			if err != nil {
				return nil, fmt.Errorf("historical map: %w", err)
			}
			p.Map = m
		}
		d.Historical = p

	case airquality.StagePrediction:
		m, err := newMapPanel("map-prediction", out.Location, PredictionZoom, locationFeatureCollection(out.Location))
		if err != nil {
			return nil, fmt.Errorf("prediction map: %w", err)
		}
		d.Prediction = &PredictionPanel{
			Heading: "PM2.5 Prediction",
			Label:   "Predicted PM2.5",
			Value:   airquality.FormatPM25(out.Prediction.PM25),
			Help:    "Based on AOD input",
			Map:     m,
		}

	default:
		d.Notices = append(d.Notices, Notice{Level: LevelInfo, Text: MsgEnterLocation})
	}

	return d, nil
}

// Renderer executes the dashboard templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates. Call during startup; a failure
// means the server must not start.
func NewRenderer() (*Renderer, error) {
	return newRendererFromFS(templatesFS, "templates")
}

func newRendererFromFS(fsys fs.FS, dir string) (*Renderer, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderDashboard writes the full page.
func (r *Renderer) RenderDashboard(w io.Writer, data *DashboardData) error {
	return r.tmpl.ExecuteTemplate(w, "dashboard.html", data)
}

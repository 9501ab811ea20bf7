package airquality

import (
	"time"
)

// DateLayout is the calendar-day format used for query dates.
const DateLayout = "2006-01-02"

// Reading is a single historical PM2.5 observation.
type Reading struct {
	Time      time.Time `json:"datetime"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	PM25      float64   `json:"pm25"`
}

// Location is a resolved point on the map. Name is only set when the
// location came from the geocoder.
type Location struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationMode selects how the user identifies a location.
type LocationMode string

const (
	LocationByName   LocationMode = "name"
	LocationByCoords LocationMode = "coords"
)

// ViewMode selects which panel the dashboard renders.
type ViewMode string

const (
	ViewHistorical ViewMode = "historical"
	ViewPredict    ViewMode = "predict"
)

// AOD bounds accepted by the model.
const (
	MinAOD = 0.0
	MaxAOD = 5.0
)

// PredictionRequest carries the single model feature.
type PredictionRequest struct {
	AOD float64 `json:"aod" validate:"gte=0,lte=5"`
}

// PredictionResult is the model's estimate for one request.
type PredictionResult struct {
	AOD  float64 `json:"aod"`
	PM25 float64 `json:"pm25"`
}

// Query is one dashboard evaluation request.
// Lat/Lon are nil when the user did not supply parseable coordinates.
type Query struct {
	Mode LocationMode
	Name string
	Lat  *float64
	Lon  *float64
	Date time.Time
	View ViewMode
	AOD  float64
}

// Stage is the end state of a dashboard evaluation.
type Stage string

const (
	StageAwaitingInput  Stage = "awaiting_input"
	StageLocationFailed Stage = "location_failed"
	StageHistorical     Stage = "historical"
	StagePrediction     Stage = "prediction"
)

// Outcome describes what the renderer should show for a Query.
type Outcome struct {
	Stage      Stage
	Location   Location
	Date       time.Time
	Readings   []Reading
	Prediction PredictionResult
	Err        error
}

// Empty reports whether a historical outcome matched no readings.
func (o Outcome) Empty() bool {
	return o.Stage == StageHistorical && len(o.Readings) == 0
}

// SameDay reports whether t falls on the calendar day of day.
// t is compared in its own location, day only contributes its date.
func SameDay(t, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

package airquality

import (
	"context"
	"errors"
	"time"

	"github.com/paulmach/orb"
)

// ErrLocationNotFound is returned when a place name cannot be resolved.
var ErrLocationNotFound = errors.New("location not found")

// Geocoder resolves free-text place names (e.g. Nominatim, Google Geocoding).
// Implementations return ErrLocationNotFound when nothing matches.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, name string) (Location, error)
}

// Model is a fitted regression model. Each row of features yields one prediction.
type Model interface {
	Predict(features [][]float64) ([]float64, error)
}

// Store is the contract the readings store must satisfy.
type Store interface {
	Len() int
	GetRange(day time.Time, bound orb.Bound) []Reading
}

// SearchBound returns the closed box extending radius degrees around loc.
func SearchBound(loc Location, radius float64) orb.Bound {
	return orb.Point{loc.Longitude, loc.Latitude}.Bound().Pad(radius)
}

// AODSample is a current aerosol optical depth value at a location,
// with the source's own PM2.5 estimate when it has one.
type AODSample struct {
	Source       string    `json:"source"`
	Time         time.Time `json:"time"`
	AOD          float64   `json:"aod"`
	ObservedPM25 *float64  `json:"observedPm25,omitempty"`
}

// AODProvider abstracts a live AOD source (e.g. Open-Meteo air quality).
type AODProvider interface {
	Name() string
	CurrentAOD(ctx context.Context, loc Location) (AODSample, error)
}

package views

import (
	"html/template"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/i474232898/airsense/internal/airquality"
)

// Map layer styling shared by every point marker.
const (
	MarkerRadiusMeters = 20000
	MarkerColor        = "rgb(200,30,0)"
	MarkerOpacity      = 160.0 / 255.0

	HistoricalZoom = 4
	PredictionZoom = 9
)

// MapPanel configures one Leaflet map.
type MapPanel struct {
	ID       string
	Lat      float64
	Lon      float64
	Zoom     int
	Radius   float64
	Color    string
	Opacity  float64
	Features template.JS
}

// ReadingsFeatureCollection converts readings into GeoJSON points carrying
// their PM2.5 value and timestamp.
func ReadingsFeatureCollection(readings []airquality.Reading) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range readings {
		f := geojson.NewFeature(orb.Point{r.Longitude, r.Latitude})
		f.Properties["pm25"] = r.PM25
		f.Properties["datetime"] = r.Time.Format("2006-01-02T15:04:05Z07:00")
		fc.Append(f)
	}
	return fc
}

func locationFeatureCollection(loc airquality.Location) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{loc.Longitude, loc.Latitude})
	if loc.Name != "" {
		f.Properties["name"] = loc.Name
	}
	fc.Append(f)
	return fc
}

func newMapPanel(id string, center airquality.Location, zoom int, fc *geojson.FeatureCollection) (*MapPanel, error) {
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return &MapPanel{
		ID:       id,
		Lat:      center.Latitude,
		Lon:      center.Longitude,
		Zoom:     zoom,
		Radius:   MarkerRadiusMeters,
		Color:    MarkerColor,
		Opacity:  MarkerOpacity,
		Features: template.JS(b),
	}, nil
}

package geocoders

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/common"
)

// GoogleGeocoder implements airquality.Geocoder with the Google Geocoding API.
// The underlying client keeps its API key in a package variable, so only one
// key can be active per process.
type GoogleGeocoder struct {
	name   string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder configures the Google client with apiKey.
func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("google geocoder api key is not configured")
	}
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		name:   "google",
		lookup: geocoder.Geocoding,
	}, nil
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Geocode treats name as a city-level address.
func (g *GoogleGeocoder) Geocode(ctx context.Context, name string) (airquality.Location, error) {
	if err := ctx.Err(); err != nil {
		return airquality.Location{}, err
	}

	loc, err := g.lookup(geocoder.Address{City: name})
	if err != nil {
		if common.ContainsAnyFold(err.Error(), "zero_results", "empty result", "not found") {
			return airquality.Location{}, airquality.ErrLocationNotFound
		}
		return airquality.Location{}, fmt.Errorf("google geocoding: %w", err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return airquality.Location{}, airquality.ErrLocationNotFound
	}

	return airquality.Location{
		Name:      name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}, nil
}

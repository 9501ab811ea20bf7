package geocoders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/common"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap search endpoint.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies the app, as Nominatim's usage policy requires.
	DefaultUserAgent = "airsense-app"
)

// NominatimGeocoder implements airquality.Geocoder against an OSM Nominatim server.
type NominatimGeocoder struct {
	name      string
	baseURL   string
	userAgent string
	client    *http.Client
	policy    common.RetryPolicy
	circuit   *gobreaker.CircuitBreaker
}

// NewNominatimGeocoder creates a geocoder. Empty baseURL/userAgent fall back to defaults.
func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &NominatimGeocoder{
		name:      "nominatim",
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    client,
		policy:    common.DefaultRetryPolicy,
		circuit:   common.NewBreaker("nominatim"),
	}
}

// WithRetryPolicy replaces the retry policy. Mostly useful in tests.
func (g *NominatimGeocoder) WithRetryPolicy(p common.RetryPolicy) *NominatimGeocoder {
	g.policy = p
	return g
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

// Geocode returns the best match for name.
func (g *NominatimGeocoder) Geocode(ctx context.Context, name string) (airquality.Location, error) {
	newRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", name)
		values.Set("format", "jsonv2")
		values.Set("limit", "1")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := common.GetWithRetry(ctx, g.client, g.policy, g.circuit, newRequest)
	if err != nil {
		return airquality.Location{}, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.Location{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(payload) == 0 {
		return airquality.Location{}, airquality.ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(payload[0].Lat), 64)
	if err != nil {
		return airquality.Location{}, fmt.Errorf("nominatim latitude %q: %w", payload[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(payload[0].Lon), 64)
	if err != nil {
		return airquality.Location{}, fmt.Errorf("nominatim longitude %q: %w", payload[0].Lon, err)
	}

	return airquality.Location{
		Name:      payload[0].DisplayName,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

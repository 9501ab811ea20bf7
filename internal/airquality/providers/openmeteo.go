package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/common"
)

// DefaultOpenMeteoURL is the Open-Meteo air quality endpoint.
const DefaultOpenMeteoURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

var errNoAOD = errors.New("response has no aerosol_optical_depth")

// OpenMeteoProvider implements airquality.AODProvider for the Open-Meteo
// air quality API. No API key is required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	policy  common.RetryPolicy
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider. An empty baseURL falls back to DefaultOpenMeteoURL.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		client:  client,
		policy:  common.DefaultRetryPolicy,
		circuit: common.NewBreaker("openmeteo"),
	}
}

// WithRetryPolicy replaces the retry policy.
func (p *OpenMeteoProvider) WithRetryPolicy(rp common.RetryPolicy) *OpenMeteoProvider {
	p.policy = rp
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) CurrentAOD(ctx context.Context, loc airquality.Location) (airquality.AODSample, error) {
	newRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
		values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
		values.Set("current", "aerosol_optical_depth,pm2_5")
		values.Set("timezone", "GMT")

		return http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := common.GetWithRetry(ctx, p.client, p.policy, p.circuit, newRequest)
	if err != nil {
		return airquality.AODSample{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Time string   `json:"time"`
			AOD  *float64 `json:"aerosol_optical_depth"`
			PM25 *float64 `json:"pm2_5"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return airquality.AODSample{}, err
	}
	if payload.Current.AOD == nil {
		return airquality.AODSample{}, errNoAOD
	}

	// Open-Meteo reports local ISO time without seconds; we ask for GMT.
	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return airquality.AODSample{
		Source:       p.name,
		Time:         ts,
		AOD:          *payload.Current.AOD,
		ObservedPM25: payload.Current.PM25,
	}, nil
}

package airquality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// DefaultSearchRadius is the half-width in degrees of the historical search box.
const DefaultSearchRadius = 1.0

// Service resolves locations and answers historical and prediction queries.
type Service struct {
	store    Store
	geocoder Geocoder
	model    Model
	aod      AODProvider
	radius   float64
}

// NewService creates a new Service. A non-positive radius falls back to DefaultSearchRadius.
func NewService(store Store, geocoder Geocoder, model Model, radius float64) *Service {
	if radius <= 0 {
		radius = DefaultSearchRadius
	}
	return &Service{
		store:    store,
		geocoder: geocoder,
		model:    model,
		radius:   radius,
	}
}

// Radius returns the configured search radius in degrees.
func (s *Service) Radius() float64 {
	return s.radius
}

// Geocode resolves a place name. Any geocoder failure is reported as
// ErrLocationNotFound; service errors are logged with their cause first.
func (s *Service) Geocode(ctx context.Context, name string) (Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Location{}, ErrLocationNotFound
	}
	if s.geocoder == nil {
		return Location{}, fmt.Errorf("no geocoder configured: %w", ErrLocationNotFound)
	}

	loc, err := s.geocoder.Geocode(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrLocationNotFound) {
			slog.Warn("geocoder failed", "geocoder", s.geocoder.Name(), "query", name, "err", err)
			return Location{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
		}
		return Location{}, err
	}
	return loc, nil
}

// History returns readings on day within the search box around loc,
// in source order. An empty slice is a valid answer.
func (s *Service) History(day time.Time, loc Location) []Reading {
	readings := s.store.GetRange(day, SearchBound(loc, s.radius))
	slog.Debug("history filtered",
		"date", day.Format(DateLayout),
		"lat", loc.Latitude,
		"lon", loc.Longitude,
		"matches", len(readings),
	)
	return readings
}

// Predict estimates PM2.5 for the given AOD. The input is rounded to the
// 0.01 step of the input control.
func (s *Service) Predict(req PredictionRequest) (PredictionResult, error) {
	if s.model == nil {
		return PredictionResult{}, errors.New("no model loaded")
	}
	aod := math.Round(req.AOD*100) / 100

	out, err := s.model.Predict([][]float64{{aod}})
	if err != nil {
		return PredictionResult{}, fmt.Errorf("predict: %w", err)
	}
	if len(out) == 0 {
		return PredictionResult{}, errors.New("predict: model returned no values")
	}
	return PredictionResult{AOD: aod, PM25: out[0]}, nil
}

// Evaluate runs one pass of the dashboard chain:
// resolve location, then either filter history or predict.
func (s *Service) Evaluate(ctx context.Context, q Query) (Outcome, error) {
	out := Outcome{Stage: StageAwaitingInput, Date: q.Date}

	switch q.Mode {
	case LocationByCoords:
		if q.Lat == nil || q.Lon == nil {
			return out, nil
		}
		out.Location = Location{Latitude: *q.Lat, Longitude: *q.Lon}
	default:
		loc, err := s.Geocode(ctx, q.Name)
		if err != nil {
			out.Stage = StageLocationFailed
			out.Err = err
			return out, nil
		}
		out.Location = loc
	}

	if q.View == ViewPredict {
		res, err := s.Predict(PredictionRequest{AOD: q.AOD})
		if err != nil {
			return out, err
		}
		out.Stage = StagePrediction
		out.Prediction = res
		return out, nil
	}

	out.Stage = StageHistorical
	out.Readings = s.History(q.Date, out.Location)
	return out, nil
}

package airquality

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoAODProvider is returned by LiveEstimate when no live source is configured.
	ErrNoAODProvider = errors.New("no live AOD provider configured")
	// ErrAODOutOfRange is returned when the live AOD falls outside [MinAOD, MaxAOD].
	ErrAODOutOfRange = errors.New("live AOD outside model range")
)

// LiveEstimate pairs a live AOD sample with the model's PM2.5 estimate for it.
type LiveEstimate struct {
	Location   Location         `json:"location"`
	Sample     AODSample        `json:"sample"`
	Prediction PredictionResult `json:"prediction"`
}

// WithAODProvider attaches a live AOD source to the service.
func (s *Service) WithAODProvider(p AODProvider) *Service {
	s.aod = p
	return s
}

// LiveEstimate fetches the current AOD at loc and runs it through the model.
func (s *Service) LiveEstimate(ctx context.Context, loc Location) (LiveEstimate, error) {
	if s.aod == nil {
		return LiveEstimate{}, ErrNoAODProvider
	}

	sample, err := s.aod.CurrentAOD(ctx, loc)
	if err != nil {
		return LiveEstimate{}, fmt.Errorf("%s: %w", s.aod.Name(), err)
	}
	if sample.AOD < MinAOD || sample.AOD > MaxAOD {
		return LiveEstimate{}, fmt.Errorf("%w: %s reported %.3f, want %.0f..%.0f",
			ErrAODOutOfRange, s.aod.Name(), sample.AOD, MinAOD, MaxAOD)
	}

	res, err := s.Predict(PredictionRequest{AOD: sample.AOD})
	if err != nil {
		return LiveEstimate{}, err
	}
	return LiveEstimate{Location: loc, Sample: sample, Prediction: res}, nil
}

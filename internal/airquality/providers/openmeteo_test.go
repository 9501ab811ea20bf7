package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/common"
)

var fastRetries = common.RetryPolicy{MaxRetries: 1, InitialInterval: time.Millisecond}

func TestOpenMeteoProvider_CurrentAOD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "28.610000", q.Get("latitude"))
		assert.Equal(t, "77.210000", q.Get("longitude"))
		assert.Equal(t, "aerosol_optical_depth,pm2_5", q.Get("current"))

		_, _ = w.Write([]byte(`{"current":{"time":"2025-06-01T12:00","interval":3600,"aerosol_optical_depth":0.62,"pm2_5":48.3}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL).WithRetryPolicy(fastRetries)
	s, err := p.CurrentAOD(context.Background(), airquality.Location{Latitude: 28.61, Longitude: 77.21})
	require.NoError(t, err)

	assert.Equal(t, "openmeteo", s.Source)
	assert.Equal(t, 0.62, s.AOD)
	require.NotNil(t, s.ObservedPM25)
	assert.Equal(t, 48.3, *s.ObservedPM25)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), s.Time)
}

func TestOpenMeteoProvider_missingAOD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"time":"2025-06-01T12:00","pm2_5":48.3}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL).WithRetryPolicy(fastRetries)
	_, err := p.CurrentAOD(context.Background(), airquality.Location{})
	assert.ErrorIs(t, err, errNoAOD)
}

func TestOpenMeteoProvider_badRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL).WithRetryPolicy(fastRetries)
	_, err := p.CurrentAOD(context.Background(), airquality.Location{Latitude: 123})
	assert.ErrorIs(t, err, common.ErrClientError)
}

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airsense/internal/airquality"
)

func at(day, hour int) time.Time {
	return time.Date(2025, time.June, day, hour, 0, 0, 0, time.UTC)
}

func sampleReadings() []airquality.Reading {
	return []airquality.Reading{
		{Time: at(1, 0), Latitude: 28.5, Longitude: 77.25, PM25: 80},
		{Time: at(1, 3), Latitude: 29.5, Longitude: 78.25, PM25: 81},  // upper corner, inclusive
		{Time: at(1, 6), Latitude: 27.5, Longitude: 76.25, PM25: 82},  // lower corner, inclusive
		{Time: at(1, 9), Latitude: 29.75, Longitude: 77.25, PM25: 83}, // latitude out
		{Time: at(1, 12), Latitude: 28.5, Longitude: 76, PM25: 84},    // longitude out
		{Time: at(2, 0), Latitude: 28.5, Longitude: 77.25, PM25: 85},  // other day
		{Time: at(1, 23), Latitude: 28, Longitude: 77, PM25: 86},
	}
}

func TestMemoryStore_GetRange(t *testing.T) {
	s := NewMemoryStore(sampleReadings())
	loc := airquality.Location{Latitude: 28.5, Longitude: 77.25}

	got := s.GetRange(at(1, 0), airquality.SearchBound(loc, 1))

	var pm []float64
	for _, r := range got {
		pm = append(pm, r.PM25)
	}
	assert.Equal(t, []float64{80, 81, 82, 86}, pm, "matches in source order with inclusive bounds")
}

func TestMemoryStore_GetRangeMatchesPredicate(t *testing.T) {
	readings := sampleReadings()
	s := NewMemoryStore(readings)
	lat, lon := 28.5, 77.25
	day := at(1, 15)

	got := s.GetRange(day, airquality.SearchBound(airquality.Location{Latitude: lat, Longitude: lon}, 1))

	var want []airquality.Reading
	for _, r := range readings {
		if airquality.SameDay(r.Time, day) && abs(r.Latitude-lat) <= 1 && abs(r.Longitude-lon) <= 1 {
			want = append(want, r)
		}
	}
	assert.Equal(t, want, got)
}

func TestMemoryStore_GetRangeIdempotent(t *testing.T) {
	s := NewMemoryStore(sampleReadings())
	b := airquality.SearchBound(airquality.Location{Latitude: 28.5, Longitude: 77.25}, 1)

	first := s.GetRange(at(1, 0), b)
	second := s.GetRange(at(1, 0), b)
	assert.Equal(t, first, second)
}

func TestMemoryStore_GetRangeEmpty(t *testing.T) {
	s := NewMemoryStore(sampleReadings())
	got := s.GetRange(at(20, 0), airquality.SearchBound(airquality.Location{Latitude: 28.5, Longitude: 77.25}, 1))

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewMemoryStore_copiesInput(t *testing.T) {
	readings := sampleReadings()
	s := NewMemoryStore(readings)
	readings[0].PM25 = -1

	got := s.GetRange(at(1, 0), airquality.SearchBound(airquality.Location{Latitude: 28.5, Longitude: 77.25}, 1))
	require.NotEmpty(t, got)
	assert.Equal(t, 80.0, got[0].PM25)
	assert.Equal(t, 7, s.Len())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package store

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/i474232898/airsense/internal/airquality"
)

// MemoryStore holds the full readings table. It is filled once and never
// mutated afterwards, so concurrent reads need no locking.
type MemoryStore struct {
	readings []airquality.Reading
}

// NewMemoryStore creates a MemoryStore over a copy of readings.
func NewMemoryStore(readings []airquality.Reading) *MemoryStore {
	cp := make([]airquality.Reading, len(readings))
	copy(cp, readings)
	return &MemoryStore{readings: cp}
}

// Len returns the number of loaded readings.
func (s *MemoryStore) Len() int {
	return len(s.readings)
}

// GetRange returns all readings on day whose position lies inside bound
// (edges included), in source order.
func (s *MemoryStore) GetRange(day time.Time, bound orb.Bound) []airquality.Reading {
	result := []airquality.Reading{}
	for _, r := range s.readings {
		if !airquality.SameDay(r.Time, day) {
			continue
		}
		if !bound.Contains(orb.Point{r.Longitude, r.Latitude}) {
			continue
		}
		result = append(result, r)
	}
	return result
}
